package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/compiler"
	"github.com/yukr-lang/yukr/errz"
	"github.com/yukr-lang/yukr/op"
	"github.com/yukr-lang/yukr/parser"
)

func disableColor(t *testing.T) {
	t.Helper()
	saved := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = saved })
}

func compile(t *testing.T, src string) *bytecode.File {
	t.Helper()
	program, err := parser.Parse(src)
	require.NoError(t, err)
	file, err := compiler.Compile(program, &compiler.Config{Fold: true, Filename: "main.yk"})
	require.NoError(t, err)
	return file
}

func TestDisassemble(t *testing.T) {
	file := compile(t, `var x = 1 + 2; print x; print "hi";`)
	instructions, err := Disassemble(file)
	require.NoError(t, err)
	require.Equal(t, []Instruction{
		{Offset: 0, Name: "LDC", Opcode: op.Ldc, Operands: []uint16{1}, Annotation: "3"},
		{Offset: 3, Name: "STORE_0", Opcode: op.Store0},
		{Offset: 4, Name: "LOAD_0", Opcode: op.Load0},
		{Offset: 5, Name: "PRINT", Opcode: op.Print},
		{Offset: 6, Name: "LDC", Opcode: op.Ldc, Operands: []uint16{3}, Annotation: `"hi"`},
		{Offset: 9, Name: "PRINT", Opcode: op.Print},
	}, instructions)
}

func TestPrint(t *testing.T) {
	disableColor(t)
	file := compile(t, `var x = 1 + 2; print x; print "hi";`)
	instructions, err := Disassemble(file)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Print(instructions, &buf))
	expected := strings.TrimSpace(`
+--------+---------+----------+------+
| OFFSET | OPCODE  | OPERANDS | INFO |
+--------+---------+----------+------+
|      0 | LDC     |        1 | 3    |
|      3 | STORE_0 |          |      |
|      4 | LOAD_0  |          |      |
|      5 | PRINT   |          |      |
|      6 | LDC     |        3 | "hi" |
|      9 | PRINT   |          |      |
+--------+---------+----------+------+
`)
	require.Equal(t, expected+"\n", buf.String())
}

func TestBranchAnnotation(t *testing.T) {
	file := bytecode.NewFile()
	require.NoError(t, file.AddAttr(&bytecode.Code{
		Instructions: []byte{byte(op.BPush1), byte(op.IfEqZ), 0, 5, byte(op.Halt)},
	}))
	instructions, err := Disassemble(file)
	require.NoError(t, err)
	require.Len(t, instructions, 3)
	require.Equal(t, "-> 5", instructions[1].Annotation)
}

func TestNilAnnotation(t *testing.T) {
	instructions, err := Disassemble(compile(t, "var x; print x;"))
	require.NoError(t, err)
	require.Equal(t, Instruction{
		Offset: 0, Name: "LDC", Opcode: op.Ldc, Operands: []uint16{0}, Annotation: "nil",
	}, instructions[0])
}

func TestInvalidConstantAnnotation(t *testing.T) {
	file := bytecode.NewFile()
	require.NoError(t, file.AddAttr(&bytecode.Code{
		Instructions: []byte{byte(op.Ldc), 0, 9},
	}))
	instructions, err := Disassemble(file)
	require.NoError(t, err)
	require.Equal(t, "<invalid constant>", instructions[0].Annotation)
}

func TestMalformedCode(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		errMsg string
	}{
		{"unknown opcode", []byte{byte(op.Nop), 0xFF}, "format error: unknown opcode 0xff (offset 1)"},
		{"truncated operand", []byte{byte(op.Ldc), 0}, "format error: truncated operand for LDC (offset 0)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := bytecode.NewFile()
			require.NoError(t, file.AddAttr(&bytecode.Code{Instructions: tt.code}))
			_, err := Disassemble(file)
			require.EqualError(t, err, tt.errMsg)
			kind, ok := errz.KindOf(err)
			require.True(t, ok)
			require.Equal(t, errz.ErrFormat, kind)
		})
	}
}

func TestNoCode(t *testing.T) {
	instructions, err := Disassemble(bytecode.NewFile())
	require.NoError(t, err)
	require.Empty(t, instructions)
}

func TestPrintFile(t *testing.T) {
	disableColor(t)
	file := compile(t, `class Point {} print "hi";`)

	var buf bytes.Buffer
	require.NoError(t, PrintFile(file, &buf))
	out := buf.String()
	require.Contains(t, out, "version 1.0\n")
	require.Contains(t, out, "source main.yk\n")
	require.Contains(t, out, "constants (4)\n")
	require.Contains(t, out, `|    #2 | Utf8   | Utf8("hi") `)
	require.Contains(t, out, `|    #3 | String | "hi" `)
	require.Contains(t, out, "declare class Point\n")
	require.Contains(t, out, "code 4 bytes, max stack 1, max locals 0\n")
	require.Contains(t, out, "|      0 | LDC    |        3 | \"hi\" |")
}

func TestPrintFileWithoutCode(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	require.NoError(t, PrintFile(bytecode.NewFile(), &buf))
	require.Equal(t, "version 1.0\nconstants (0)\nno code\n", buf.String())
}
