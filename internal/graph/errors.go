package graph

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors so callers can branch on kind
// instead of pattern-matching message substrings.
type ErrorKind int

const (
	// KindUnknown is the zero kind, reported for errors that did not
	// originate in this engine.
	KindUnknown ErrorKind = iota
	// KindValidation covers missing required fields, unknown enum
	// values, and invalid numeric input.
	KindValidation
	// KindNotFound covers references to absent nodes, edges, or graphs.
	KindNotFound
	// KindConflict covers ID collisions and idempotency violations.
	KindConflict
	// KindStorage wraps failures from the storage collaborator.
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the engine. Storage errors
// keep their cause chained for errors.Is/As.
type Error struct {
	kind  ErrorKind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil && e.msg != "" {
		return e.msg + ": " + e.cause.Error()
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the classification of err, or KindUnknown for errors
// that are not engine errors.
func Kind(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a not-found engine error.
func IsNotFound(err error) bool { return Kind(err) == KindNotFound }

// IsValidation reports whether err is a validation engine error.
func IsValidation(err error) bool { return Kind(err) == KindValidation }

// Invalidf builds a validation error.
func Invalidf(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error.
func NotFoundf(format string, args ...any) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a conflict error.
func Conflictf(format string, args ...any) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

// Storagef wraps a storage collaborator failure, preserving the original
// message per the pass-through contract.
func Storagef(cause error, format string, args ...any) error {
	return &Error{kind: KindStorage, msg: fmt.Sprintf(format, args...), cause: cause}
}
