package kv

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure returned by a Store matches exactly one of these
// with errors.Is.
var (
	ErrInvalidKey = errors.New("invalid key")
	ErrQuery      = errors.New("query failed")
	ErrWrite      = errors.New("write failed")
	ErrDecode     = errors.New("decode failed")
)

// Error is a failed store operation.
type Error struct {
	Op   string // "get", "set", "delete", "sweep"
	Key  string // Offending key or pattern, empty for sweep
	Kind error  // One of the Err* kinds above
	Err  error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := "kv " + e.Op
	if e.Key != "" {
		msg += fmt.Sprintf(" %q", e.Key)
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, key string, kind, err error) *Error {
	return &Error{Op: op, Key: key, Kind: kind, Err: err}
}
