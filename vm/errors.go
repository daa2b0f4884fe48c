package vm

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error kinds
// ---------------------------------------------------------------------------

// Sentinel kinds. Every runtime failure is an *Error whose Kind is one of
// these, so callers match with errors.Is.
var (
	ErrArityMismatch        = errors.New("arity mismatch")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrNotCallable          = errors.New("not callable")
	ErrImmutableTarget      = errors.New("immutable target")
	ErrInvalidFieldSelector = errors.New("invalid field selector")
	ErrLookupFailure        = errors.New("lookup failure")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrChaperoneViolation   = errors.New("chaperone violation")
	ErrStepLimit            = errors.New("step limit exceeded")
)

// Error is a failure raised by a primitive operation.
type Error struct {
	Who  string // primitive name that failed
	Msg  string
	Kind error
}

func (e *Error) Error() string {
	if e.Who == "" {
		return e.Msg
	}
	return e.Who + ": " + e.Msg
}

// Unwrap exposes the kind to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

func raise(kind error, who string, format string, args ...any) error {
	return &Error{Who: who, Msg: fmt.Sprintf(format, args...), Kind: kind}
}

func arityError(who string, format string, args ...any) error {
	return raise(ErrArityMismatch, who, format, args...)
}

func typeError(who string, format string, args ...any) error {
	return raise(ErrTypeMismatch, who, format, args...)
}
