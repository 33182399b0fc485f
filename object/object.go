// Package object provides the runtime values of the yukr virtual machine
// and the heap that holds its reference-typed objects.
//
// A Value is one of Number, Bool, String, Nil or Ref. Ref values point into
// a Heap, which owns every allocated Obj until the heap is released:
//
//	switch v := v.(type) {
//	case object.Number:
//		// float64(v)
//	case object.Ref:
//		str, ok := heap.AsString(v.Handle)
//	}
package object

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type of a value as a string.
type Type string

const (
	NUMBER Type = "number"
	BOOL   Type = "bool"
	STRING Type = "string"
	NIL    Type = "nil"
	REF    Type = "ref"
)

// Value is a runtime value held on the operand stack or in a local slot.
type Value interface {
	Type() Type

	// Inspect returns the display form of the value. Refs are rendered
	// without their payload; use Display to resolve them through a heap.
	Inspect() string

	Equal(other Value) bool
}

// Number is a double precision number.
type Number float64

func (n Number) Type() Type { return NUMBER }

func (n Number) Inspect() string { return formatNumber(float64(n)) }

func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	return ok && n == o
}

// Bool is a boolean.
type Bool bool

var (
	True  = Bool(true)
	False = Bool(false)
)

func (b Bool) Type() Type { return BOOL }

func (b Bool) Inspect() string { return strconv.FormatBool(bool(b)) }

func (b Bool) Equal(other Value) bool {
	o, ok := other.(Bool)
	return ok && b == o
}

// String is an immutable string value backed by the constant pool.
type String string

func (s String) Type() Type { return STRING }

func (s String) Inspect() string { return string(s) }

func (s String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && s == o
}

// NilType is the type of Nil.
type NilType struct{}

// Nil is the value of a local that was never stored to.
var Nil = NilType{}

func (NilType) Type() Type { return NIL }

func (NilType) Inspect() string { return "nil" }

func (NilType) Equal(other Value) bool {
	_, ok := other.(NilType)
	return ok
}

// Ref refers to an object on a Heap.
type Ref struct {
	Handle Handle
}

func (r Ref) Type() Type { return REF }

func (r Ref) Inspect() string { return fmt.Sprintf("<ref #%d>", r.Handle) }

// Equal reports identity: two refs are equal when they point at the same
// object.
func (r Ref) Equal(other Value) bool {
	o, ok := other.(Ref)
	return ok && r.Handle == o.Handle
}

// Display returns the printable form of v, resolving refs through heap.
// A nil heap or a dangling handle falls back to Inspect.
func Display(v Value, heap *Heap) string {
	ref, ok := v.(Ref)
	if !ok || heap == nil {
		return v.Inspect()
	}
	obj, ok := heap.Get(ref.Handle)
	if !ok {
		return ref.Inspect()
	}
	switch p := obj.Payload.(type) {
	case *ObjString:
		return p.Text
	case *ObjArray:
		var b strings.Builder
		b.WriteByte('[')
		for i, elem := range p.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Display(elem, heap))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return ref.Inspect()
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
