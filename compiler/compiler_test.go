package compiler

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/errz"
	"github.com/yukr-lang/yukr/parser"
)

func compileSource(t *testing.T, src string, cfg *Config) (*bytecode.File, error) {
	t.Helper()
	program, err := parser.Parse(src)
	require.NoError(t, err)
	return Compile(program, cfg)
}

func mustCompile(t *testing.T, src string, cfg *Config) (*bytecode.File, *bytecode.Code) {
	t.Helper()
	file, err := compileSource(t, src, cfg)
	require.NoError(t, err)
	code, ok := file.Code()
	require.True(t, ok, "expected a Code attribute")
	return file, code
}

func TestFoldedAddition(t *testing.T) {
	file, code := mustCompile(t, "print 1 + 2;", nil)
	require.Equal(t, []bytecode.Constant{bytecode.NewNumber(3)}, file.Pool.Entries())
	require.Equal(t, []byte{0x13, 0, 1, 0x06}, code.Instructions)
	require.Equal(t, uint16(1), code.MaxStack)
	require.Equal(t, uint16(0), code.MaxLocals)
}

func TestUnfoldedAddition(t *testing.T) {
	file, code := mustCompile(t, "print 1 + 2;", &Config{Fold: false})
	require.Equal(t, []bytecode.Constant{
		bytecode.NewNumber(1),
		bytecode.NewNumber(2),
	}, file.Pool.Entries())
	require.Equal(t, []byte{0x13, 0, 1, 0x13, 0, 2, 0x02, 0x06}, code.Instructions)
	require.Equal(t, uint16(2), code.MaxStack)
}

func TestLongChainStackDepth(t *testing.T) {
	for _, fold := range []bool{true, false} {
		_, code := mustCompile(t, "print 1+2+3+4+5+6;", &Config{Fold: fold})
		require.Equal(t, uint16(2), code.MaxStack, "fold=%v", fold)
	}
	file, _ := mustCompile(t, "print 1+2+3+4+5+6;", nil)
	require.Equal(t, []bytecode.Constant{
		bytecode.NewNumber(3),
		bytecode.NewNumber(4),
		bytecode.NewNumber(5),
		bytecode.NewNumber(6),
	}, file.Pool.Entries())
}

func TestFoldOperators(t *testing.T) {
	tests := []struct {
		src      string
		expected float64
	}{
		{"print 7 - 2;", 5},
		{"print 3 * 4;", 12},
		{"print 1 / 4;", 0.25},
		{"print 1 / 0;", math.Inf(1)},
		{"print -5;", -5},
		{"print (2 + 3);", 5},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			file, code := mustCompile(t, tt.src, nil)
			require.Equal(t, []bytecode.Constant{bytecode.NewNumber(tt.expected)}, file.Pool.Entries())
			require.Equal(t, []byte{0x13, 0, 1, 0x06}, code.Instructions)
		})
	}
}

func TestDeclarationSlots(t *testing.T) {
	src := "var a = 0; var b = 1; var c = 2; print a; print b; print c;"
	_, code := mustCompile(t, src, nil)
	require.Equal(t, []byte{
		0x13, 0, 1, 0x17, // a: Ldc, Store0
		0x13, 0, 2, 0x18, // b: Ldc, Store1
		0x13, 0, 3, 0x19, // c: Ldc, Store2
		0x1C, 0x06, // Load0, Print
		0x1D, 0x06, // Load1, Print
		0x1E, 0x06, // Load2, Print
	}, code.Instructions)
	require.Equal(t, uint16(3), code.MaxLocals)
	require.Equal(t, uint16(1), code.MaxStack)
}

func TestWideSlots(t *testing.T) {
	src := "var a = 1; var b = 1; var c = 1; var d = 1; var e = 1; print e; e = d;"
	_, code := mustCompile(t, src, nil)
	require.Equal(t, []byte{
		0x13, 0, 1, 0x17,
		0x13, 0, 1, 0x18,
		0x13, 0, 1, 0x19,
		0x13, 0, 1, 0x1A,
		0x13, 0, 1, 0x16, 0, 4, // Store 4
		0x1B, 0, 4, 0x06, // Load 4, Print
		0x1F, 0x16, 0, 4, // Load3, Store 4
	}, code.Instructions)
	require.Equal(t, uint16(5), code.MaxLocals)
}

func TestVarWithoutInitializer(t *testing.T) {
	file, code := mustCompile(t, "var x; print x;", nil)
	require.Empty(t, file.Pool.Entries())
	require.Equal(t, []byte{
		0x13, 0, 0, 0x17, // Ldc sentinel, Store0
		0x1C, 0x06, // Load0, Print
	}, code.Instructions)
	require.Equal(t, uint16(1), code.MaxLocals)
	require.Equal(t, uint16(1), code.MaxStack)
}

func TestNilLiteral(t *testing.T) {
	file, code := mustCompile(t, "print nil;", nil)
	require.Empty(t, file.Pool.Entries())
	require.Equal(t, []byte{0x13, 0, 0, 0x06}, code.Instructions)
}

func TestSiblingBlocksResetSlots(t *testing.T) {
	_, code := mustCompile(t, "{ var a = 5; } { var b; print b; }", nil)
	require.Equal(t, []byte{
		0x13, 0, 1, 0x17, // a -> 0
		0x13, 0, 0, 0x17, // b reuses slot 0 and is reset
		0x1C, 0x06,
	}, code.Instructions)
	require.Equal(t, uint16(1), code.MaxLocals)
}

func TestNestedBlockLocals(t *testing.T) {
	tests := []struct {
		src       string
		maxLocals uint16
	}{
		{"{ var a = 1; var b = 2; print a + b; }", 2},
		{"var x; { var y; { var z; } } var w;", 3},
		{"{ var a; } { var b; var c; }", 2},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, code := mustCompile(t, tt.src, nil)
			require.Equal(t, tt.maxLocals, code.MaxLocals)
		})
	}
}

func TestUsageSurvivesRoundTrip(t *testing.T) {
	for _, src := range []string{
		"var a; var b; print 1;",
		"var a = 1; { var b; { var c = a + 2; print c; } } var d;",
		"{ var a = 1; var b = 2; print a + b; } { var c; }",
		"print 1 + 2 * 3; var x = (4 - 5) / 6; x;",
	} {
		t.Run(src, func(t *testing.T) {
			file, code := mustCompile(t, src, &Config{Fold: false})
			data, err := bytecode.Marshal(file)
			require.NoError(t, err)
			loaded, err := bytecode.Unmarshal(data)
			require.NoError(t, err)
			restored, ok := loaded.Code()
			require.True(t, ok)
			require.Equal(t, code.MaxStack, restored.MaxStack)
			require.Equal(t, code.MaxLocals, restored.MaxLocals)
		})
	}
}

func TestBlockScopes(t *testing.T) {
	src := `
var a = 1;
{
	var b = 2;
	var a = 3;
	print b;
}
var c = 4;
print c;
print a;`
	_, code := mustCompile(t, src, nil)
	require.Equal(t, []byte{
		0x13, 0, 1, 0x17, // a -> 0
		0x13, 0, 2, 0x18, // b -> 1
		0x13, 0, 3, 0x19, // inner a -> 2
		0x1D, 0x06, // print b
		0x13, 0, 4, 0x18, // c reuses slot 1
		0x1D, 0x06, // print c
		0x1C, 0x06, // print outer a
	}, code.Instructions)
	require.Equal(t, uint16(3), code.MaxLocals)
}

func TestUnaryWithoutFolding(t *testing.T) {
	file, code := mustCompile(t, "var x = 2; print -x;", nil)
	require.Equal(t, []bytecode.Constant{
		bytecode.NewNumber(2),
		bytecode.NewNumber(0),
	}, file.Pool.Entries())
	require.Equal(t, []byte{
		0x13, 0, 1, 0x17,
		0x13, 0, 2, 0x1C, 0x03, 0x06,
	}, code.Instructions)
	require.Equal(t, uint16(2), code.MaxStack)

	file, _ = mustCompile(t, "print -3;", &Config{Fold: false})
	require.Equal(t, []bytecode.Constant{
		bytecode.NewNumber(0),
		bytecode.NewNumber(3),
	}, file.Pool.Entries())
}

func TestStringsAndBools(t *testing.T) {
	file, code := mustCompile(t, `print "hi"; print "hi"; print true; print false;`, nil)
	require.Equal(t, []bytecode.Constant{
		bytecode.NewUtf8("hi"),
		bytecode.String{Utf8Index: 1},
	}, file.Pool.Entries())
	require.Equal(t, []byte{
		0x13, 0, 2, 0x06,
		0x13, 0, 2, 0x06,
		0x15, 0x06,
		0x14, 0x06,
	}, code.Instructions)
}

func TestExpressionStatementsStayOnStack(t *testing.T) {
	_, code := mustCompile(t, "1; 2; true;", nil)
	require.Equal(t, uint16(3), code.MaxStack)
}

func TestDeclarations(t *testing.T) {
	src := `
class Point { var x = 1; }
fun add(a, b) { print a + b; }
{
	fun nested(x) { fun inner() {} }
}`
	file, err := compileSource(t, src, nil)
	require.NoError(t, err)

	_, ok := file.Code()
	require.False(t, ok, "bodies are not lowered")

	require.Len(t, file.Decls, 3)
	require.Equal(t, bytecode.DeclClass, file.Decls[0].Kind)
	require.Equal(t, "Point", file.DeclName(file.Decls[0]))
	require.Equal(t, bytecode.DeclFunction, file.Decls[1].Kind)
	require.Equal(t, "add", file.DeclName(file.Decls[1]))
	require.Equal(t, "nested", file.DeclName(file.Decls[2]))
}

func TestEmptyProgram(t *testing.T) {
	file, err := compileSource(t, "", nil)
	require.NoError(t, err)
	require.Empty(t, file.Attrs)
	require.Empty(t, file.Pool.Entries())
}

func TestSourceFile(t *testing.T) {
	file, _ := mustCompile(t, "print 1;", &Config{Fold: true, Filename: "main.yk"})
	name, ok := file.SourceFile()
	require.True(t, ok)
	require.Equal(t, "main.yk", name)
	require.Len(t, file.Attrs, 2)
}

func TestGenerationErrors(t *testing.T) {
	tests := []struct {
		src   string
		cause error
		msg   string
	}{
		{"print y;", ErrUndefined, `compile error: 1:7: undefined variable "y"`},
		{"y = 1;", ErrUndefined, `compile error: 1:1: undefined variable "y"`},
		{"var a; var a;", ErrRedeclared, `compile error: 1:12: variable already declared in this scope: "a"`},
		{"var a = a;", ErrUndefined, `compile error: 1:9: undefined variable "a"`},
		{"var count = 1; print cout;", ErrUndefined, `compile error: 1:22: undefined variable "cout" (did you mean "count"?)`},
		{"var ab = 1; var ac = 2; print ad;", ErrUndefined, `compile error: 1:31: undefined variable "ad" (did you mean one of "ab", "ac"?)`},
		{"class A {} fun A() {}", ErrRedeclared, `compile error: 1:16: function "A" already declared`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := compileSource(t, tt.src, nil)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.cause))
			kind, ok := errz.KindOf(err)
			require.True(t, ok)
			require.Equal(t, errz.ErrGeneration, kind)
			require.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestDuplicateCodeAttribute(t *testing.T) {
	program, err := parser.Parse("print 1;")
	require.NoError(t, err)
	c, err := New(nil)
	require.NoError(t, err)
	_, err = c.Compile(program)
	require.NoError(t, err)

	_, err = c.Compile(program)
	require.Error(t, err)
	require.True(t, errors.Is(err, bytecode.ErrDuplicateCode))
	kind, _ := errz.KindOf(err)
	require.Equal(t, errz.ErrGeneration, kind)
}

func TestCodeTooLarge(t *testing.T) {
	program, err := parser.Parse("print 1; print 2;")
	require.NoError(t, err)
	c, err := New(nil)
	require.NoError(t, err)
	c.maxCodeLen = 6

	_, err = c.Compile(program)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCodeTooLarge))
	require.Len(t, c.Code().Instructions(), 4)
}

func TestPoolOverflow(t *testing.T) {
	program, err := parser.Parse(`print "x";`)
	require.NoError(t, err)
	c, err := New(nil)
	require.NoError(t, err)
	for i := 0; c.File().Pool.Len() < bytecode.MaxPoolSize-1; i++ {
		_, err := c.File().Pool.PushNumber(float64(i))
		require.NoError(t, err)
	}
	// Utf8 fits, the String entry referring to it does not.
	_, err = c.Compile(program)
	require.Error(t, err)
	require.True(t, errors.Is(err, bytecode.ErrPoolOverflow))
}

func TestUnitIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	program, err := parser.Parse("print 1 + 2;")
	require.NoError(t, err)
	c, err := New(&Config{Fold: true, ID: "unit-1", Logger: &logger})
	require.NoError(t, err)
	require.Equal(t, "unit-1", c.Code().ID())
	_, err = c.Compile(program)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"unit":"unit-1"`)
	require.Contains(t, out, `"message":"folded constant"`)
	require.Contains(t, out, `"message":"unit finalized"`)

	c2, err := New(nil)
	require.NoError(t, err)
	require.Len(t, c2.Code().ID(), 36)
}
