// Package errz defines the structured error type shared by the yukr code
// generator and virtual machine.
package errz

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrFormat indicates a malformed binary container.
	ErrFormat ErrorKind = iota
	// ErrGeneration indicates a failure while lowering a program to bytecode.
	ErrGeneration
	// ErrType indicates an operation applied to a value of the wrong type.
	ErrType
	// ErrRuntime indicates a general execution failure.
	ErrRuntime
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrFormat:
		return "format error"
	case ErrGeneration:
		return "compile error"
	case ErrType:
		return "type error"
	case ErrRuntime:
		return "runtime error"
	default:
		return "error"
	}
}

// NoOffset marks an error that is not tied to an instruction offset.
const NoOffset = -1

// StructuredError carries the error kind, the instruction offset (when the
// error happened inside an instruction buffer) and an optional cause.
type StructuredError struct {
	Message string
	Kind    ErrorKind
	Offset  int
	Cause   error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Offset == NoOffset {
		return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
	}
	return fmt.Sprintf("%s: %s (offset %d)", e.Kind.String(), e.Message, e.Offset)
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError that is not tied to an offset.
func New(kind ErrorKind, message string) *StructuredError {
	return &StructuredError{
		Message: message,
		Kind:    kind,
		Offset:  NoOffset,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(kind ErrorKind, format string, args ...any) *StructuredError {
	return New(kind, fmt.Sprintf(format, args...))
}

// AtOffset sets the instruction offset of the error.
func (e *StructuredError) AtOffset(offset int) *StructuredError {
	e.Offset = offset
	return e
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// KindOf returns the kind of the first StructuredError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
