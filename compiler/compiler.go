// Package compiler is used to compile a yukr abstract syntax tree (AST) into
// a bytecode container.
//
// # Two-Pass Compilation Strategy
//
// Pass 1 walks the tree and records every class and function declaration
// as a name-only Decl in the container. Bodies are parsed but not lowered,
// so declarations nested inside a body are not visited.
//
// Pass 2 lowers the remaining statements into a single instruction buffer.
// Every instruction goes through one emit primitive that applies the
// opcode's stack effect and keeps the peak operand stack depth. Local
// variables get slots from the symbol table at their declaration sites.
//
// # Constant Folding
//
// When folding is enabled, a binary operator whose two operands are both
// number literals is evaluated at compile time and emitted as one Ldc.
// Folding is not applied transitively: in 1 + 2 + 3 only 1 + 2 folds.
package compiler

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/yukr-lang/yukr/ast"
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/errz"
	"github.com/yukr-lang/yukr/internal/token"
	"github.com/yukr-lang/yukr/op"
)

// Config holds compiler configuration options.
type Config struct {
	// Fold enables constant folding of literal arithmetic.
	Fold bool

	// Filename is recorded in the SourceFile attribute when set.
	Filename string

	// ID identifies the compilation unit in log output. A random UUID is
	// generated when empty.
	ID string

	// Logger receives debug events. Nil disables logging.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default configuration, with folding enabled.
func DefaultConfig() *Config {
	return &Config{Fold: true}
}

// Compiler lowers a program into a bytecode container. A Compiler owns a
// single unit; compiling into it a second time requests a second Code
// attribute and fails.
type Compiler struct {
	file     *bytecode.File
	main     *Code
	current  *SymbolTable
	fold     bool
	filename string
	logger   zerolog.Logger

	// limit on the instruction buffer size
	maxCodeLen int

	// declared class and function names
	decls map[string]bool
}

// Compile compiles the given program and returns its container.
// Pass nil for cfg to use default settings.
func Compile(program *ast.Program, cfg *Config) (*bytecode.File, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return c.Compile(program)
}

// New creates and returns a new Compiler. Pass nil for cfg to use defaults.
func New(cfg *Config) (*Compiler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	id := cfg.ID
	if id == "" {
		u, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("generating unit id: %w", err)
		}
		id = u.String()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("unit", id).Logger()
	}
	main := newCode(id)
	return &Compiler{
		file:       bytecode.NewFile(),
		main:       main,
		current:    main.symbols,
		fold:       cfg.Fold,
		filename:   cfg.Filename,
		logger:     logger,
		maxCodeLen: bytecode.MaxCodeLength,
		decls:      map[string]bool{},
	}, nil
}

// Code returns the generation-time state of the unit.
func (c *Compiler) Code() *Code {
	return c.main
}

// File returns the container being built.
func (c *Compiler) File() *bytecode.File {
	return c.file
}

// Compile lowers program into the unit and finalizes the container.
func (c *Compiler) Compile(program *ast.Program) (*bytecode.File, error) {
	if err := c.collectDeclarations(program); err != nil {
		return nil, err
	}
	for _, stmt := range program.Stmts {
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}
	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c.file, nil
}

func (c *Compiler) errorf(cause error, format string, args ...any) error {
	return errz.Newf(errz.ErrGeneration, format, args...).WithCause(cause)
}

// errorAt reports an error located at a source position.
func (c *Compiler) errorAt(pos token.Position, cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return errz.Newf(errz.ErrGeneration, "%s: %s", pos, msg).WithCause(cause)
}

// undefined reports a read or write of an undeclared variable, naming the
// closest visible names when there are any.
func (c *Compiler) undefined(ident *ast.Ident) error {
	if hint := suggest(ident.Name, c.current.Names()); hint != "" {
		return c.errorAt(ident.Pos(), ErrUndefined, "undefined variable %q (%s)", ident.Name, hint)
	}
	return c.errorAt(ident.Pos(), ErrUndefined, "undefined variable %q", ident.Name)
}

// collectDeclarations records a Decl for every class and function in the
// program, in source order.
func (c *Compiler) collectDeclarations(program *ast.Program) error {
	var err error
	declare := func(kind bytecode.DeclKind, name *ast.Ident) {
		if c.decls[name.Name] {
			err = c.errorAt(name.Pos(), ErrRedeclared, "%s %q already declared", kind, name.Name)
			return
		}
		idx, perr := c.file.Pool.PushUtf8(name.Name)
		if perr != nil {
			err = c.errorAt(name.Pos(), perr, "declaring %q: %v", name.Name, perr)
			return
		}
		c.decls[name.Name] = true
		c.file.Decls = append(c.file.Decls, bytecode.Decl{Kind: kind, NameIndex: idx})
	}
	ast.Inspect(program, func(node ast.Node) bool {
		if err != nil {
			return false
		}
		switch node := node.(type) {
		case *ast.ClassDecl:
			declare(bytecode.DeclClass, node.Name)
			return false
		case *ast.FunDecl:
			declare(bytecode.DeclFunction, node.Name)
			return false
		case ast.Expr:
			return false
		}
		return true
	})
	return err
}

// emit appends one instruction to the unit.
func (c *Compiler) emit(opcode op.Code, operands ...uint16) error {
	size := 1 + op.GetInfo(opcode).OperandSize
	if len(c.main.instructions)+size > c.maxCodeLen {
		return c.errorf(ErrCodeTooLarge,
			"emitting %s at offset %d: %v", opcode, len(c.main.instructions), ErrCodeTooLarge)
	}
	c.main.append(opcode, operands...)
	return nil
}

func (c *Compiler) emitStore(slot uint16) error {
	opcode, wide := op.StoreSlot(slot)
	if wide {
		return c.emit(opcode, slot)
	}
	return c.emit(opcode)
}

func (c *Compiler) emitLoad(slot uint16) error {
	opcode, wide := op.LoadSlot(slot)
	if wide {
		return c.emit(opcode, slot)
	}
	return c.emit(opcode)
}

// constant pushes a value to the pool and emits an Ldc for it.
func (c *Compiler) constant(pos token.Position, push func() (uint16, error)) error {
	idx, err := push()
	if err != nil {
		return c.errorAt(pos, err, "adding constant: %v", err)
	}
	return c.emit(op.Ldc, idx)
}

func (c *Compiler) number(pos token.Position, value float64) error {
	return c.constant(pos, func() (uint16, error) { return c.file.Pool.PushNumber(value) })
}

func (c *Compiler) compileStmt(node ast.Stmt) error {
	switch node := node.(type) {
	case *ast.Print:
		if err := c.compileExpr(node.Value); err != nil {
			return err
		}
		return c.emit(op.Print)
	case *ast.Var:
		return c.compileVar(node)
	case *ast.Assign:
		return c.compileAssign(node)
	case *ast.ExprStmt:
		return c.compileExpr(node.X)
	case *ast.Block:
		return c.compileBlock(node)
	case *ast.ClassDecl, *ast.FunDecl:
		// recorded by collectDeclarations
		return nil
	default:
		return c.errorAt(node.Pos(), ErrUnsupported, "unknown statement type %T", node)
	}
}

func (c *Compiler) compileVar(node *ast.Var) error {
	// The initializer cannot refer to the variable it initializes. Without
	// one the slot is reset to nil, as sibling blocks reuse slots.
	if node.Value == nil {
		if err := c.emit(op.Ldc, noneIndex); err != nil {
			return err
		}
	} else if err := c.compileExpr(node.Value); err != nil {
		return err
	}
	sym, err := c.current.InsertVariable(node.Name.Name)
	if err != nil {
		return c.errorAt(node.Name.Pos(), err, "%v", err)
	}
	c.main.declared(c.current.Slots())
	return c.emitStore(sym.Index())
}

func (c *Compiler) compileAssign(node *ast.Assign) error {
	sym, ok := c.current.Resolve(node.Name.Name)
	if !ok {
		return c.undefined(node.Name)
	}
	if err := c.compileExpr(node.Value); err != nil {
		return err
	}
	return c.emitStore(sym.Index())
}

func (c *Compiler) compileBlock(node *ast.Block) error {
	c.current = c.current.NewBlock()
	defer func() { c.current = c.current.Parent() }()
	for _, stmt := range node.Stmts {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileExpr(node ast.Expr) error {
	switch node := node.(type) {
	case *ast.Number:
		return c.number(node.Pos(), node.Value)
	case *ast.String:
		return c.constant(node.Pos(), func() (uint16, error) { return c.file.Pool.PushString(node.Value) })
	case *ast.Bool:
		if node.Value {
			return c.emit(op.BPush1)
		}
		return c.emit(op.BPush0)
	case *ast.Nil:
		return c.emit(op.Ldc, noneIndex)
	case *ast.Ident:
		sym, ok := c.current.Resolve(node.Name)
		if !ok {
			return c.undefined(node)
		}
		return c.emitLoad(sym.Index())
	case *ast.Grouping:
		return c.compileExpr(node.X)
	case *ast.Unary:
		return c.compileUnary(node)
	case *ast.Binary:
		return c.compileBinary(node)
	default:
		return c.errorAt(node.Pos(), ErrUnsupported, "unknown expression type %T", node)
	}
}

// noneIndex is the pool sentinel; loading it pushes nil.
const noneIndex = 0

var arithmetic = map[string]op.Code{
	"+": op.Add,
	"-": op.Sub,
	"*": op.Mult,
	"/": op.Div,
}

func fold(operator string, a, b float64) float64 {
	switch operator {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	default:
		return a / b
	}
}

func (c *Compiler) compileBinary(node *ast.Binary) error {
	opcode, ok := arithmetic[node.Op]
	if !ok {
		return c.errorAt(node.OpPos, ErrUnsupported, "unknown operator %q", node.Op)
	}
	if c.fold {
		x, xok := node.X.(*ast.Number)
		y, yok := node.Y.(*ast.Number)
		if xok && yok {
			result := fold(node.Op, x.Value, y.Value)
			c.logger.Debug().
				Str("expr", node.String()).
				Float64("result", result).
				Msg("folded constant")
			return c.number(node.Pos(), result)
		}
	}
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	if err := c.compileExpr(node.Y); err != nil {
		return err
	}
	return c.emit(opcode)
}

func (c *Compiler) compileUnary(node *ast.Unary) error {
	if node.Op != "-" {
		return c.errorAt(node.OpPos, ErrUnsupported, "unknown operator %q", node.Op)
	}
	if x, ok := node.X.(*ast.Number); ok && c.fold {
		return c.number(node.Pos(), -x.Value)
	}
	// There is no negate instruction: -x is lowered as 0 - x.
	if err := c.number(node.Pos(), 0); err != nil {
		return err
	}
	if err := c.compileExpr(node.X); err != nil {
		return err
	}
	return c.emit(op.Sub)
}

// finalize attaches the Code attribute when any instruction was emitted,
// and the SourceFile attribute when a filename is configured.
func (c *Compiler) finalize() error {
	if len(c.main.instructions) > 0 {
		attr, err := c.main.attr()
		if err != nil {
			return c.errorf(err, "%v", err)
		}
		if err := c.file.AddAttr(attr); err != nil {
			return c.errorf(err, "%v", err)
		}
	}
	if c.filename != "" {
		if _, ok := c.file.SourceFile(); !ok {
			idx, err := c.file.Pool.PushUtf8(c.filename)
			if err != nil {
				return c.errorf(err, "recording source file: %v", err)
			}
			if err := c.file.AddAttr(&bytecode.SourceFile{NameIndex: idx}); err != nil {
				return c.errorf(err, "%v", err)
			}
		}
	}
	c.logger.Debug().
		Int("code_size", len(c.main.instructions)).
		Int("max_stack", c.main.maxStack).
		Int("max_locals", c.main.maxLocals).
		Int("constants", c.file.Pool.Len()).
		Int("decls", len(c.file.Decls)).
		Msg("unit finalized")
	return nil
}
