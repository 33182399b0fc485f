package compiler

import "errors"

var (
	ErrCodeTooLarge  = errors.New("instruction buffer exceeds the maximum code length")
	ErrStackTooDeep  = errors.New("operand stack depth exceeds 65535")
	ErrTooManyLocals = errors.New("too many local variables")
	ErrUndefined     = errors.New("undefined variable")
	ErrRedeclared    = errors.New("variable already declared in this scope")
	ErrUnsupported   = errors.New("unsupported expression")
)
