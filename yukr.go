// Package yukr compiles and runs yukr programs.
//
// Compile turns source text into a Program backed by a bytecode container,
// Run executes a Program on a fresh virtual machine, and Eval does both:
//
//	result, err := yukr.Eval(`var x = 2; x * 21;`)
package yukr

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/compiler"
	"github.com/yukr-lang/yukr/object"
	"github.com/yukr-lang/yukr/parser"
	"github.com/yukr-lang/yukr/vm"
)

// Version is the current yukr version.
const Version = "0.1.0"

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	filename string
	noFold   bool
	out      io.Writer
	logger   *zerolog.Logger
	heap     *object.Heap
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerConfig() *compiler.Config {
	return &compiler.Config{
		Fold:     !o.noFold,
		Filename: o.filename,
		Logger:   o.logger,
	}
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.out != nil {
		opts = append(opts, vm.WithOutput(o.out))
	}
	if o.logger != nil {
		opts = append(opts, vm.WithLogger(*o.logger))
	}
	if o.heap != nil {
		opts = append(opts, vm.WithHeap(o.heap))
	}
	return opts
}

// WithFilename sets the filename of the source being compiled. It appears
// in error messages and is recorded in the container.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithoutFolding disables constant folding.
func WithoutFolding() Option {
	return func(o *options) {
		o.noFold = true
	}
}

// WithOutput sets the writer that print statements write to. The default
// is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithLogger sets the logger for compiler and virtual machine diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithHeap runs programs against a caller-owned heap, so that reference
// results stay resolvable after Run returns.
func WithHeap(heap *object.Heap) Option {
	return func(o *options) {
		o.heap = heap
	}
}

// Compile parses and compiles source code into a Program.
func Compile(source string, opts ...Option) (*Program, error) {
	o := collectOptions(opts...)

	var parserOpts []parser.Option
	if o.filename != "" {
		parserOpts = append(parserOpts, parser.WithFilename(o.filename))
	}
	program, err := parser.Parse(source, parserOpts...)
	if err != nil {
		return nil, err
	}
	file, err := compiler.Compile(program, o.compilerConfig())
	if err != nil {
		return nil, err
	}
	return &Program{file: file, source: source, filename: o.filename}, nil
}

// Load decodes a serialized container into a Program.
func Load(data []byte) (*Program, error) {
	file, err := bytecode.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	filename, _ := file.SourceFile()
	return &Program{file: file, filename: filename}, nil
}

// Run executes a Program on a new virtual machine and returns the value
// left on top of the stack, or nil when the stack is empty.
func Run(program *Program, opts ...Option) (object.Value, error) {
	o := collectOptions(opts...)
	return vm.Run(program.file, o.vmOpts()...)
}

// Eval compiles and runs source code. It is equivalent to Compile followed
// by Run.
func Eval(source string, opts ...Option) (object.Value, error) {
	program, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	return Run(program, opts...)
}
