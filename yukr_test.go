package yukr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yukr-lang/yukr/compiler"
	"github.com/yukr-lang/yukr/errz"
	"github.com/yukr-lang/yukr/object"
)

func TestBasicUsage(t *testing.T) {
	result, err := Eval("1 + 1;")
	require.NoError(t, err)
	require.Equal(t, object.Number(2), result)
}

func TestEvalResults(t *testing.T) {
	tests := []struct {
		input    string
		expected object.Value
	}{
		{"", nil},
		{"var x = 4;", nil},
		{"nil;", object.Nil},
		{"var x = 2; x * 21;", object.Number(42)},
		{"10 / 4;", object.Number(2.5)},
		{"-3 - -3;", object.Number(0)},
		{"(1 + 2) * 3;", object.Number(9)},
		{`"hello";`, object.String("hello")},
		{"true;", object.True},
		{"var a; a;", object.Nil},
		{"var a = 1; a = a + 1; a;", object.Number(2)},
		{"var a = 1; { var b = 2; a = a + b; } a;", object.Number(3)},
		{"{ var a = 1; var b = 2; a + b; }", object.Number(3)},
		{"var z = 0; { var a = 5; } { var b; b; }", object.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := Eval(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.expected, result)
		})
	}
}

func TestPrintOutput(t *testing.T) {
	var out bytes.Buffer
	_, err := Eval(`print 1 + 2; print "hi"; print false; var x; print x;`, WithOutput(&out))
	require.NoError(t, err)
	require.Equal(t, "3\nhi\nfalse\nnil\n", out.String())
}

func TestFoldingOption(t *testing.T) {
	folded, err := Compile("print 1 + 2;")
	require.NoError(t, err)
	unfolded, err := Compile("print 1 + 2;", WithoutFolding())
	require.NoError(t, err)

	require.Equal(t, 1, len(folded.File().Pool.Entries()))
	require.Equal(t, 2, len(unfolded.File().Pool.Entries()))

	var a, b bytes.Buffer
	_, err = Run(folded, WithOutput(&a))
	require.NoError(t, err)
	_, err = Run(unfolded, WithOutput(&b))
	require.NoError(t, err)
	require.Equal(t, a.String(), b.String())
}

func TestParseError(t *testing.T) {
	_, err := Eval("print ;", WithFilename("bad.yk"))
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.EqualError(t, err, `bad.yk:1:7: parse error: invalid syntax (unexpected ";")`)
}

func TestCompileError(t *testing.T) {
	_, err := Eval("print y;")
	require.EqualError(t, err, `compile error: 1:7: undefined variable "y"`)
	require.True(t, errors.Is(err, compiler.ErrUndefined))
	kind, ok := errz.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrGeneration, kind)
}

func TestRuntimeError(t *testing.T) {
	_, err := Eval(`print "a" + 1;`)
	require.EqualError(t, err, "type error: unsupported operand types for ADD: string and number (offset 6)")
	kind, ok := errz.KindOf(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrType, kind)
}

func TestLoggerOption(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.DebugLevel)
	_, err := Eval("print 1 + 2;", WithLogger(logger), WithOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	require.Contains(t, logs.String(), `"message":"folded constant"`)
	require.Contains(t, logs.String(), `"message":"unit finalized"`)
}

func TestCallerOwnedHeap(t *testing.T) {
	heap := object.NewHeap()
	ref := heap.NewString("kept")
	_, err := Eval("1;", WithHeap(heap))
	require.NoError(t, err)
	s, ok := heap.AsString(ref.Handle)
	require.True(t, ok)
	require.Equal(t, "kept", s.Text)
}
