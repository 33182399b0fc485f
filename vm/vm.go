// Package vm provides a VirtualMachine that executes yukr bytecode.
//
// The machine walks the instruction buffer of a container's Code attribute
// with a single instruction pointer, evaluating against an operand stack
// and a fixed array of local slots. Reference values live on an
// object.Heap that is released once, when the machine is closed.
package vm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/rs/zerolog"
	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/errz"
	"github.com/yukr-lang/yukr/object"
	"github.com/yukr-lang/yukr/op"
)

// MaxStackDepth is the default limit on the operand stack depth.
const MaxStackDepth = math.MaxUint16

var ErrClosed = errors.New("virtual machine is closed")

type VirtualMachine struct {
	ip       int // instruction pointer
	start    int // offset of the instruction being executed
	code     *bytecode.Code
	pool     *bytecode.Pool
	stack    []object.Value
	locals   []object.Value
	maxStack int
	heap     *object.Heap
	ownsHeap bool
	out      io.Writer
	logger   zerolog.Logger
	halted   bool
	closed   bool
}

// New creates a Virtual Machine for the given container. A container
// without a Code attribute runs as an empty program.
func New(file *bytecode.File, options ...Option) (*VirtualMachine, error) {
	if file == nil {
		return nil, errors.New("vm: nil container")
	}
	code, ok := file.Code()
	if !ok {
		code = &bytecode.Code{}
	}
	vm := &VirtualMachine{
		code:     code,
		pool:     file.Pool,
		heap:     object.NewHeap(),
		ownsHeap: true,
		maxStack: MaxStackDepth,
		out:      os.Stdout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.heap == nil {
		vm.heap = object.NewHeap()
		vm.ownsHeap = true
	}
	vm.stack = make([]object.Value, 0, min(int(code.MaxStack), vm.maxStack))
	vm.locals = make([]object.Value, code.MaxLocals)
	for i := range vm.locals {
		vm.locals[i] = object.Nil
	}
	return vm, nil
}

// Run executes the program from its first instruction. Local slots keep
// their values across runs, so a host can seed them with SetLocal.
//
// Errors raised by the program are returned as *errz.StructuredError
// values carrying the offset of the failing instruction. A panic during
// execution is recovered and returned as an error as well.
func (vm *VirtualMachine) Run() (err error) {
	if vm.closed {
		return ErrClosed
	}
	vm.ip = 0
	vm.start = 0
	vm.halted = false
	vm.stack = vm.stack[:0]
	defer func() {
		if r := recover(); r != nil {
			err = errz.Newf(errz.ErrRuntime, "panic: %v", r).AtOffset(vm.start)
		}
	}()
	return vm.eval()
}

func (vm *VirtualMachine) eval() error {
	instructions := vm.code.Instructions
	for vm.ip < len(instructions) {
		vm.start = vm.ip
		opcode := op.Code(instructions[vm.ip])
		info := op.GetInfo(opcode)
		if !info.Valid {
			return vm.evalError("unknown opcode 0x%02x", byte(opcode))
		}
		if vm.ip+1+info.OperandSize > len(instructions) {
			// Truncated operand: stop here and let the desync check report it.
			break
		}
		vm.ip++

		switch opcode {
		case op.Nop:
		case op.Halt:
			vm.halted = true
			return nil
		case op.Add, op.Sub, op.Mult, op.Div:
			if err := vm.arithmetic(opcode); err != nil {
				return err
			}
		case op.Print:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(vm.out, object.Display(v, vm.heap)); err != nil {
				return vm.evalError("print: %v", err).WithCause(err)
			}
		case op.IfEq, op.IfNe, op.IfLt, op.IfLe, op.IfGt, op.IfGe:
			target := int(vm.fetch())
			b, err := vm.pop()
			if err != nil {
				return err
			}
			a, err := vm.pop()
			if err != nil {
				return err
			}
			taken, err := vm.compare(opcode, a, b)
			if err != nil {
				return err
			}
			if err := vm.branch(taken, target); err != nil {
				return err
			}
		case op.IfEqZ, op.IfNeZ, op.IfLtZ, op.IfLeZ, op.IfGtZ, op.IfGeZ:
			target := int(vm.fetch())
			a, err := vm.pop()
			if err != nil {
				return err
			}
			n, ok := a.(object.Number)
			if !ok {
				return vm.typeError("%s expected a number (got %s)", opcode, a.Type())
			}
			taken, err := vm.compare(opcode-op.IfEqZ+op.IfEq, n, object.Number(0))
			if err != nil {
				return err
			}
			if err := vm.branch(taken, target); err != nil {
				return err
			}
		case op.Ldc:
			if err := vm.loadConstant(vm.fetch()); err != nil {
				return err
			}
		case op.BPush0:
			if err := vm.push(object.False); err != nil {
				return err
			}
		case op.BPush1:
			if err := vm.push(object.True); err != nil {
				return err
			}
		case op.Store:
			if err := vm.store(int(vm.fetch())); err != nil {
				return err
			}
		case op.Store0, op.Store1, op.Store2, op.Store3:
			if err := vm.store(int(opcode - op.Store0)); err != nil {
				return err
			}
		case op.Load:
			if err := vm.load(int(vm.fetch())); err != nil {
				return err
			}
		case op.Load0, op.Load1, op.Load2, op.Load3:
			if err := vm.load(int(opcode - op.Load0)); err != nil {
				return err
			}
		}
	}
	if vm.ip != len(instructions) {
		vm.logger.Warn().
			Int("ip", vm.ip).
			Int("code_size", len(instructions)).
			Msg("instruction pointer desync: execution stopped before the end of the code")
	}
	return nil
}

func (vm *VirtualMachine) arithmetic(opcode op.Code) error {
	b, err := vm.pop()
	if err != nil {
		return err
	}
	a, err := vm.pop()
	if err != nil {
		return err
	}
	x, xok := a.(object.Number)
	y, yok := b.(object.Number)
	if !xok || !yok {
		return vm.typeError("unsupported operand types for %s: %s and %s",
			opcode, a.Type(), b.Type())
	}
	var result object.Number
	switch opcode {
	case op.Add:
		result = x + y
	case op.Sub:
		result = x - y
	case op.Mult:
		result = x * y
	case op.Div:
		result = x / y
	}
	return vm.push(result)
}

// compare evaluates the condition of a two-operand branch. Equality works
// on any values; ordering requires numbers.
func (vm *VirtualMachine) compare(opcode op.Code, a, b object.Value) (bool, error) {
	switch opcode {
	case op.IfEq:
		return a.Equal(b), nil
	case op.IfNe:
		return !a.Equal(b), nil
	}
	x, xok := a.(object.Number)
	y, yok := b.(object.Number)
	if !xok || !yok {
		return false, vm.typeError("%s expected numbers (got %s and %s)", opcode, a.Type(), b.Type())
	}
	switch opcode {
	case op.IfLt:
		return x < y, nil
	case op.IfLe:
		return x <= y, nil
	case op.IfGt:
		return x > y, nil
	default:
		return x >= y, nil
	}
}

func (vm *VirtualMachine) branch(taken bool, target int) error {
	if !taken {
		return nil
	}
	if target > len(vm.code.Instructions) {
		return vm.evalError("branch target %d out of range", target)
	}
	vm.ip = target
	return nil
}

func (vm *VirtualMachine) loadConstant(index uint16) error {
	c, ok := vm.pool.Get(index)
	if !ok {
		return vm.evalError("constant index %d out of range", index)
	}
	switch c := c.(type) {
	case bytecode.None:
		return vm.push(object.Nil)
	case bytecode.Number:
		return vm.push(object.Number(c.Float64()))
	case bytecode.String:
		text, ok := vm.pool.Utf8At(c.Utf8Index)
		if !ok {
			return vm.evalError("string constant %d refers to invalid index %d", index, c.Utf8Index)
		}
		return vm.push(object.String(text))
	default:
		vm.logger.Warn().
			Int("offset", vm.start).
			Uint16("index", index).
			Str("constant", c.String()).
			Msg("skipping load of unsupported constant")
		return nil
	}
}

func (vm *VirtualMachine) store(slot int) error {
	if slot >= len(vm.locals) {
		return vm.evalError("local slot %d out of range (%d locals)", slot, len(vm.locals))
	}
	v, err := vm.pop()
	if err != nil {
		return err
	}
	vm.locals[slot] = v
	return nil
}

func (vm *VirtualMachine) load(slot int) error {
	if slot >= len(vm.locals) {
		return vm.evalError("local slot %d out of range (%d locals)", slot, len(vm.locals))
	}
	return vm.push(vm.locals[slot])
}

// TOS returns the top-of-stack value if there is one, without modifying the
// stack.
func (vm *VirtualMachine) TOS() (object.Value, bool) {
	if len(vm.stack) == 0 {
		return nil, false
	}
	return vm.stack[len(vm.stack)-1], true
}

// Halted reports whether the last run stopped at a Halt instruction.
func (vm *VirtualMachine) Halted() bool {
	return vm.halted
}

// Heap returns the heap that holds the VM's objects.
func (vm *VirtualMachine) Heap() *object.Heap {
	return vm.heap
}

// NewString allocates a string object on the VM heap.
func (vm *VirtualMachine) NewString(text string) object.Ref {
	return vm.heap.NewString(text)
}

// NewArray allocates an array object on the VM heap.
func (vm *VirtualMachine) NewArray(elements ...object.Value) object.Ref {
	return vm.heap.NewArray(elements...)
}

// Local returns the value of a local slot.
func (vm *VirtualMachine) Local(slot int) (object.Value, bool) {
	if slot < 0 || slot >= len(vm.locals) {
		return nil, false
	}
	return vm.locals[slot], true
}

// SetLocal stores v in a local slot.
func (vm *VirtualMachine) SetLocal(slot int, v object.Value) error {
	if vm.closed {
		return ErrClosed
	}
	if slot < 0 || slot >= len(vm.locals) {
		return fmt.Errorf("local slot %d out of range (%d locals)", slot, len(vm.locals))
	}
	vm.locals[slot] = v
	return nil
}

// Close releases the heap if the VM owns it. Handles issued by the VM do
// not resolve afterwards. Calling Close again has no effect.
func (vm *VirtualMachine) Close() error {
	if vm.closed {
		return nil
	}
	vm.closed = true
	vm.stack = nil
	vm.locals = nil
	if vm.ownsHeap {
		freed := vm.heap.Release()
		vm.logger.Debug().Int("objects", freed).Msg("heap released")
	}
	return nil
}

func (vm *VirtualMachine) pop() (object.Value, error) {
	if len(vm.stack) == 0 {
		return nil, vm.evalError("stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack[len(vm.stack)-1] = nil
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VirtualMachine) push(v object.Value) error {
	if len(vm.stack) >= vm.maxStack {
		return vm.evalError("stack overflow (limit %d)", vm.maxStack)
	}
	vm.stack = append(vm.stack, v)
	return nil
}

// fetch reads the u16 operand at the instruction pointer.
func (vm *VirtualMachine) fetch() uint16 {
	ip := vm.ip
	vm.ip += 2
	return uint16(vm.code.Instructions[ip])<<8 | uint16(vm.code.Instructions[ip+1])
}

func (vm *VirtualMachine) typeError(format string, args ...any) *errz.StructuredError {
	return errz.Newf(errz.ErrType, format, args...).AtOffset(vm.start)
}

func (vm *VirtualMachine) evalError(format string, args ...any) *errz.StructuredError {
	return errz.Newf(errz.ErrRuntime, format, args...).AtOffset(vm.start)
}
