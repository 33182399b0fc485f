package op

import "encoding/binary"

// Instruction is one decoded instruction within an instruction buffer.
type Instruction struct {
	Offset  int
	Code    Code
	Operand uint16
	// Truncated is set when the buffer ended inside the operand bytes.
	Truncated bool
}

// Size returns the encoded size of the instruction in bytes.
func (i Instruction) Size() int {
	return 1 + GetInfo(i.Code).OperandSize
}

// Iter walks an instruction buffer one instruction at a time.
type Iter struct {
	code []byte
	pos  int
}

// NewIter returns an iterator positioned at the start of code.
func NewIter(code []byte) *Iter {
	return &Iter{code: code}
}

// Next decodes the next instruction. It returns false once the buffer is
// exhausted. Unknown opcodes are returned with no operand.
func (it *Iter) Next() (Instruction, bool) {
	if it.pos >= len(it.code) {
		return Instruction{}, false
	}
	insn := Instruction{Offset: it.pos, Code: Code(it.code[it.pos])}
	it.pos++
	size := GetInfo(insn.Code).OperandSize
	if size == 2 {
		if it.pos+2 > len(it.code) {
			insn.Truncated = true
			it.pos = len(it.code)
			return insn, true
		}
		insn.Operand = binary.BigEndian.Uint16(it.code[it.pos:])
		it.pos += 2
	}
	return insn, true
}

// Usage describes the operand stack and locals requirements of an
// instruction buffer.
type Usage struct {
	MaxStack  int
	MaxLocals int
}

// Analyze scans straight-line code and recomputes the peak operand stack
// depth and the number of local slots it touches. Branch targets are not
// followed; the depth only ever reflects fall-through order, which is the
// only order the generator emits.
func Analyze(code []byte) Usage {
	var usage Usage
	depth := 0
	it := NewIter(code)
	for {
		insn, ok := it.Next()
		if !ok || insn.Truncated {
			break
		}
		depth += GetInfo(insn.Code).StackEffect
		if depth < 0 {
			depth = 0
		}
		if depth > usage.MaxStack {
			usage.MaxStack = depth
		}
		if slot, ok := localSlot(insn); ok && slot+1 > usage.MaxLocals {
			usage.MaxLocals = slot + 1
		}
	}
	return usage
}

func localSlot(insn Instruction) (int, bool) {
	switch {
	case insn.Code == Store || insn.Code == Load:
		return int(insn.Operand), true
	case insn.Code >= Store0 && insn.Code <= Store3:
		return int(insn.Code - Store0), true
	case insn.Code >= Load0 && insn.Code <= Load3:
		return int(insn.Code - Load0), true
	}
	return 0, false
}
