package bytecode

import (
	"fmt"
	"math"
	"strconv"
)

// Tag identifies the kind of a constant pool entry on the wire.
type Tag uint8

const (
	TagUtf8   Tag = 0x00
	TagNumber Tag = 0x01
	TagString Tag = 0x02

	// TagNone is the in-memory tag of the index 0 sentinel. It never
	// appears in an encoded container.
	TagNone Tag = 0xff
)

// String returns the name of the tag.
func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagNumber:
		return "Number"
	case TagString:
		return "String"
	case TagNone:
		return "None"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Constant is one entry of the constant pool.
type Constant interface {
	Tag() Tag

	// Equal reports whether two entries are the same pool value. Equal
	// entries are deduplicated by Pool.Push.
	Equal(other Constant) bool

	String() string
}

// None is the reserved sentinel stored at index 0 of every pool.
type None struct{}

func (None) Tag() Tag { return TagNone }

func (None) Equal(other Constant) bool {
	_, ok := other.(None)
	return ok
}

func (None) String() string { return "None" }

// Utf8 holds raw text bytes.
type Utf8 struct {
	Bytes []byte
}

// NewUtf8 returns a Utf8 entry holding a copy of s.
func NewUtf8(s string) Utf8 {
	return Utf8{Bytes: []byte(s)}
}

func (c Utf8) Tag() Tag { return TagUtf8 }

func (c Utf8) Equal(other Constant) bool {
	o, ok := other.(Utf8)
	return ok && string(c.Bytes) == string(o.Bytes)
}

func (c Utf8) String() string { return fmt.Sprintf("Utf8(%q)", c.Bytes) }

// Text returns the entry's bytes as a string.
func (c Utf8) Text() string { return string(c.Bytes) }

// Number is an IEEE-754 double split into its high and low 32 bits.
type Number struct {
	High uint32
	Low  uint32
}

// NewNumber splits f into a Number entry.
func NewNumber(f float64) Number {
	bits := math.Float64bits(f)
	return Number{High: uint32(bits >> 32), Low: uint32(bits)}
}

func (c Number) Tag() Tag { return TagNumber }

// Equal compares the raw bit halves, so +0 and -0 differ and NaNs with the
// same payload are equal.
func (c Number) Equal(other Constant) bool {
	o, ok := other.(Number)
	return ok && c == o
}

// Float64 joins the two halves back into a double.
func (c Number) Float64() float64 {
	return math.Float64frombits(uint64(c.High)<<32 | uint64(c.Low))
}

func (c Number) String() string {
	return "Number(" + strconv.FormatFloat(c.Float64(), 'g', -1, 64) + ")"
}

// String refers to the Utf8 entry holding its text.
type String struct {
	Utf8Index uint16
}

func (c String) Tag() Tag { return TagString }

// Equal compares the referenced index, not the referenced text.
func (c String) Equal(other Constant) bool {
	o, ok := other.(String)
	return ok && c.Utf8Index == o.Utf8Index
}

func (c String) String() string { return fmt.Sprintf("String(#%d)", c.Utf8Index) }

type constantKey struct {
	tag  Tag
	text string
	bits uint64
}

func keyOf(c Constant) constantKey {
	switch c := c.(type) {
	case Utf8:
		return constantKey{tag: TagUtf8, text: string(c.Bytes)}
	case Number:
		return constantKey{tag: TagNumber, bits: uint64(c.High)<<32 | uint64(c.Low)}
	case String:
		return constantKey{tag: TagString, bits: uint64(c.Utf8Index)}
	default:
		return constantKey{tag: TagNone}
	}
}
