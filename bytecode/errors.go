package bytecode

import "errors"

var (
	ErrBadMagic           = errors.New("invalid magic number")
	ErrUnknownConstantTag = errors.New("unknown constant tag")
	ErrUnknownAttribute   = errors.New("unknown attribute")
	ErrBadNameIndex       = errors.New("name index does not refer to a Utf8 constant")
	ErrBadReference       = errors.New("string constant does not refer to a Utf8 constant")
	ErrPoolOverflow       = errors.New("constant pool overflow")
	ErrDuplicateCode      = errors.New("duplicate Code attribute")
	ErrTooLong            = errors.New("value too long for its length field")
)
