package typeparser

import "errors"

// statement level errors, the statement is dropped and parsing goes on
var (
	ErrBadDeclaration = errors.New("bad declaration")
	ErrUnknownType    = errors.New("unknown data type")
	ErrBadArrayBound  = errors.New("array size cannot be parsed into a number")
	ErrBadEnumMember  = errors.New("bad enum member declaration")
	ErrBadDirective   = errors.New("bad pre-processing directive")
)

// layout errors, the type is registered with size 0
var (
	ErrBadMemberSize          = errors.New("incorrect type size")
	ErrUnsupportedArrayLayout = errors.New("array member cannot be aligned")
)

// file level errors, parsing of the current file stops
var (
	ErrUnbalancedBlock = errors.New("block structure broken")
	ErrUnexpectedEOF   = errors.New("unexpected end of file")
)

// preprocessing errors
var (
	ErrUnclosedComment      = errors.New("unclosed comment block exists")
	ErrDanglingContinuation = errors.New("wrap line at last line")
)
