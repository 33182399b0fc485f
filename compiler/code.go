package compiler

import (
	"math"

	"github.com/yukr-lang/yukr/bytecode"
	"github.com/yukr-lang/yukr/op"
)

// Code is the generation-time state of one unit: the instruction buffer
// and the running stack and local counters with their peaks. The peaks
// only ever grow.
type Code struct {
	id           string
	instructions []byte
	symbols      *SymbolTable

	depth     int
	maxStack  int
	maxLocals int
}

func newCode(id string) *Code {
	return &Code{id: id, symbols: NewSymbolTable()}
}

// ID returns the unit ID.
func (c *Code) ID() string {
	return c.id
}

// Instructions returns the instruction buffer emitted so far.
func (c *Code) Instructions() []byte {
	return c.instructions
}

func (c *Code) Depth() int { return c.depth }

func (c *Code) MaxStack() int { return c.maxStack }

func (c *Code) MaxLocals() int { return c.maxLocals }

// append writes opcode and its operands and applies the opcode's stack
// effect. It returns the offset of the instruction.
func (c *Code) append(opcode op.Code, operands ...uint16) int {
	pos := len(c.instructions)
	c.instructions = append(c.instructions, byte(opcode))
	for _, operand := range operands {
		c.instructions = append(c.instructions, byte(operand>>8), byte(operand))
	}
	c.depth += op.GetInfo(opcode).StackEffect
	if c.depth > c.maxStack {
		c.maxStack = c.depth
	}
	return pos
}

// declared bumps the local peak to the number of slots in use by the
// scope that just assigned one.
func (c *Code) declared(slots int) {
	if slots > c.maxLocals {
		c.maxLocals = slots
	}
}

// attr builds the Code attribute for the unit.
func (c *Code) attr() (*bytecode.Code, error) {
	if c.maxStack > math.MaxUint16 {
		return nil, ErrStackTooDeep
	}
	instructions := make([]byte, len(c.instructions))
	copy(instructions, c.instructions)
	return &bytecode.Code{
		Instructions: instructions,
		MaxStack:     uint16(c.maxStack),
		MaxLocals:    uint16(c.maxLocals),
	}, nil
}
