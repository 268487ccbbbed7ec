// Package apperr carries the domain error taxonomy. Handlers map kinds to HTTP
// status codes; services return them directly.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidState
	KindInvalidTransition
	KindInvalidRange
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalidRange:
		return "invalid_range"
	case KindPersistence:
		return "persistence_failure"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, set for persistence failures
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...interface{}) *Error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// InvalidTransition reports a transition request outside the status table,
// naming both the current and the attempted status.
func InvalidTransition(current, attempted string) *Error {
	return &Error{
		Kind: KindInvalidTransition,
		Msg:  fmt.Sprintf("cannot transition from %q to %q", current, attempted),
	}
}

func InvalidRange(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRange, Msg: fmt.Sprintf(format, args...)}
}

func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Msg: "persistence failure", Err: err}
}

// KindOf extracts the taxonomy kind, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
