package bytecode

import "math"

// Attribute names as stored in the constant pool.
const (
	AttrCode       = "Code"
	AttrSourceFile = "SourceFile"
)

// MaxCodeLength is the largest instruction buffer the Code attribute can
// describe.
const MaxCodeLength = math.MaxUint32

// Attr is a named metadata block attached to a container.
type Attr interface {
	Name() string
	attr()
}

// Code holds the instruction buffer of a unit together with the operand
// stack depth and number of local slots it needs.
type Code struct {
	Instructions []byte
	MaxStack     uint16
	MaxLocals    uint16
}

func (*Code) attr() {}

// Name returns "Code".
func (*Code) Name() string { return AttrCode }

// SourceFile names the source file the container was compiled from.
type SourceFile struct {
	NameIndex uint16
}

func (*SourceFile) attr() {}

// Name returns "SourceFile".
func (*SourceFile) Name() string { return AttrSourceFile }
