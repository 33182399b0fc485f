// Package op defines the opcodes executed by the yukr virtual machine.
package op

import "fmt"

// Code is a single-byte opcode that indicates an operation to execute.
type Code byte

const (
	// Execution
	Nop  Code = 0x00
	Halt Code = 0x01

	// Arithmetic
	Add  Code = 0x02
	Sub  Code = 0x03
	Mult Code = 0x04
	Div  Code = 0x05

	// Output
	Print Code = 0x06

	// Branch on comparison of two values
	IfEq Code = 0x07
	IfNe Code = 0x08
	IfLt Code = 0x09
	IfLe Code = 0x0A
	IfGt Code = 0x0B
	IfGe Code = 0x0C

	// Branch on comparison of one value against zero
	IfEqZ Code = 0x0D
	IfNeZ Code = 0x0E
	IfLtZ Code = 0x0F
	IfLeZ Code = 0x10
	IfGtZ Code = 0x11
	IfGeZ Code = 0x12

	// Push constants
	Ldc    Code = 0x13
	BPush0 Code = 0x14
	BPush1 Code = 0x15

	// Store
	Store  Code = 0x16
	Store0 Code = 0x17
	Store1 Code = 0x18
	Store2 Code = 0x19
	Store3 Code = 0x1A

	// Load
	Load  Code = 0x1B
	Load0 Code = 0x1C
	Load1 Code = 0x1D
	Load2 Code = 0x1E
	Load3 Code = 0x1F
)

// ShortSlots is the number of local slots with dedicated zero-operand
// load and store opcodes.
const ShortSlots = 4

// Info contains information about an opcode.
type Info struct {
	Code        Code
	Name        string
	OperandSize int // operand bytes following the opcode
	StackEffect int // net change of the operand stack depth
	Valid       bool
}

var infos [256]Info

func init() {
	type opInfo struct {
		op     Code
		name   string
		size   int
		effect int
	}
	ops := []opInfo{
		{Nop, "NOP", 0, 0},
		{Halt, "HALT", 0, 0},
		{Add, "ADD", 0, -1},
		{Sub, "SUB", 0, -1},
		{Mult, "MULT", 0, -1},
		{Div, "DIV", 0, -1},
		{Print, "PRINT", 0, -1},
		{IfEq, "IF_EQ", 2, -2},
		{IfNe, "IF_NE", 2, -2},
		{IfLt, "IF_LT", 2, -2},
		{IfLe, "IF_LE", 2, -2},
		{IfGt, "IF_GT", 2, -2},
		{IfGe, "IF_GE", 2, -2},
		{IfEqZ, "IF_EQZ", 2, -1},
		{IfNeZ, "IF_NEZ", 2, -1},
		{IfLtZ, "IF_LTZ", 2, -1},
		{IfLeZ, "IF_LEZ", 2, -1},
		{IfGtZ, "IF_GTZ", 2, -1},
		{IfGeZ, "IF_GEZ", 2, -1},
		{Ldc, "LDC", 2, 1},
		{BPush0, "BPUSH_0", 0, 1},
		{BPush1, "BPUSH_1", 0, 1},
		{Store, "STORE", 2, -1},
		{Store0, "STORE_0", 0, -1},
		{Store1, "STORE_1", 0, -1},
		{Store2, "STORE_2", 0, -1},
		{Store3, "STORE_3", 0, -1},
		{Load, "LOAD", 2, 1},
		{Load0, "LOAD_0", 0, 1},
		{Load1, "LOAD_1", 0, 1},
		{Load2, "LOAD_2", 0, 1},
		{Load3, "LOAD_3", 0, 1},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:        o.op,
			Name:        o.name,
			OperandSize: o.size,
			StackEffect: o.effect,
			Valid:       true,
		}
	}
}

// GetInfo returns information about the given opcode. The Valid field is
// false for bytes that are not part of the instruction set.
func GetInfo(op Code) Info {
	return infos[op]
}

// String returns the opcode name, or a hex form for unknown bytes.
func (c Code) String() string {
	if info := infos[c]; info.Valid {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(c))
}

// StoreSlot returns the opcode that stores into the given local slot and
// whether the slot index must follow as a u16 operand.
func StoreSlot(slot uint16) (Code, bool) {
	if slot < ShortSlots {
		return Store0 + Code(slot), false
	}
	return Store, true
}

// LoadSlot returns the opcode that loads from the given local slot and
// whether the slot index must follow as a u16 operand.
func LoadSlot(slot uint16) (Code, bool) {
	if slot < ShortSlots {
		return Load0 + Code(slot), false
	}
	return Load, true
}

// IsBranch reports whether the opcode belongs to the If family.
func IsBranch(c Code) bool {
	return c >= IfEq && c <= IfGeZ
}
