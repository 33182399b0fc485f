// Package dis disassembles yukr bytecode containers.
package dis

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/errz"
	"github.com/yukr-lang/yukr/internal/table"
	"github.com/yukr-lang/yukr/op"
)

// Instruction is one decoded instruction with a human readable annotation.
type Instruction struct {
	Offset     int
	Name       string
	Opcode     op.Code
	Operands   []uint16
	Annotation string
}

// Disassemble decodes the Code attribute of a container. A container
// without code yields no instructions. Unknown opcodes and truncated
// operands are reported as format errors.
func Disassemble(file *bytecode.File) ([]Instruction, error) {
	code, ok := file.Code()
	if !ok {
		return nil, nil
	}
	var instructions []Instruction
	it := op.NewIter(code.Instructions)
	for {
		insn, ok := it.Next()
		if !ok {
			break
		}
		info := op.GetInfo(insn.Code)
		if !info.Valid {
			return nil, errz.Newf(errz.ErrFormat, "unknown opcode 0x%02x", byte(insn.Code)).
				AtOffset(insn.Offset)
		}
		if insn.Truncated {
			return nil, errz.Newf(errz.ErrFormat, "truncated operand for %s", insn.Code).
				AtOffset(insn.Offset)
		}
		instruction := Instruction{
			Offset: insn.Offset,
			Name:   info.Name,
			Opcode: insn.Code,
		}
		if info.OperandSize > 0 {
			instruction.Operands = []uint16{insn.Operand}
			instruction.Annotation = annotate(file.Pool, insn)
		}
		instructions = append(instructions, instruction)
	}
	return instructions, nil
}

func annotate(pool *bytecode.Pool, insn op.Instruction) string {
	switch {
	case insn.Code == op.Ldc:
		c, ok := pool.Get(insn.Operand)
		if !ok {
			return "<invalid constant>"
		}
		return describe(pool, c)
	case op.IsBranch(insn.Code):
		return fmt.Sprintf("-> %d", insn.Operand)
	}
	return ""
}

// describe renders a constant the way it appears in source where possible.
func describe(pool *bytecode.Pool, c bytecode.Constant) string {
	switch c := c.(type) {
	case bytecode.None:
		return "nil"
	case bytecode.Number:
		return strconv.FormatFloat(c.Float64(), 'g', -1, 64)
	case bytecode.String:
		text, ok := pool.Utf8At(c.Utf8Index)
		if !ok {
			return fmt.Sprintf("<string #%d>", c.Utf8Index)
		}
		return strconv.Quote(text)
	default:
		return c.String()
	}
}

// Print writes the instructions as a table.
func Print(instructions []Instruction, writer io.Writer) error {
	opcode := color.New(color.FgCyan).SprintFunc()
	info := color.New(color.FgYellow).SprintFunc()
	t := table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		})
	for _, instr := range instructions {
		var operands string
		for i, operand := range instr.Operands {
			if i > 0 {
				operands += " "
			}
			operands += strconv.Itoa(int(operand))
		}
		annotation := instr.Annotation
		if annotation != "" {
			annotation = info(annotation)
		}
		t.Append([]string{
			strconv.Itoa(instr.Offset),
			opcode(instr.Name),
			operands,
			annotation,
		})
	}
	return t.Render()
}

// PrintFile writes a listing of the whole container: version, source file,
// constant pool, declarations, code sizes and finally the instructions.
func PrintFile(file *bytecode.File, writer io.Writer) error {
	instructions, err := Disassemble(file)
	if err != nil {
		return err
	}
	heading := color.New(color.Bold).SprintFunc()
	if _, err := fmt.Fprintf(writer, "%s %d.%d\n", heading("version"), file.Major, file.Minor); err != nil {
		return err
	}
	if source, ok := file.SourceFile(); ok {
		if _, err := fmt.Fprintf(writer, "%s %s\n", heading("source"), source); err != nil {
			return err
		}
	}

	entries := file.Pool.Entries()
	if _, err := fmt.Fprintf(writer, "%s (%d)\n", heading("constants"), len(entries)); err != nil {
		return err
	}
	if len(entries) > 0 {
		pool := table.NewTable(writer).
			WithHeader([]string{"INDEX", "TAG", "VALUE"}).
			WithColumnAlignment([]table.Alignment{table.AlignRight, table.AlignLeft, table.AlignLeft}).
			WithHeaderAlignment([]table.Alignment{table.AlignCenter, table.AlignCenter, table.AlignCenter})
		for i, c := range entries {
			pool.Append([]string{
				"#" + strconv.Itoa(i+1),
				c.Tag().String(),
				describe(file.Pool, c),
			})
		}
		if err := pool.Render(); err != nil {
			return err
		}
	}

	for _, decl := range file.Decls {
		if _, err := fmt.Fprintf(writer, "%s %s %s\n", heading("declare"), decl.Kind, file.DeclName(decl)); err != nil {
			return err
		}
	}

	code, ok := file.Code()
	if !ok {
		_, err := fmt.Fprintln(writer, heading("no code"))
		return err
	}
	if _, err := fmt.Fprintf(writer, "%s %d bytes, max stack %d, max locals %d\n",
		heading("code"), len(code.Instructions), code.MaxStack, code.MaxLocals); err != nil {
		return err
	}
	if len(instructions) == 0 {
		return nil
	}
	return Print(instructions, writer)
}
