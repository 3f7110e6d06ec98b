package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure at the catalog boundary.
type ErrorKind string

const (
	KindStoreUnavailable    ErrorKind = "StoreUnavailable"
	KindConstraintViolation ErrorKind = "ConstraintViolation"
	KindNotFound            ErrorKind = "NotFound"
	KindRejectedStatement   ErrorKind = "RejectedStatement"
	KindMalformedInput      ErrorKind = "MalformedInput"
)

// Sentinel errors, one per kind. A *Error matches the sentinel of its kind
// with errors.Is.
var (
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")
	ErrRejectedStatement   = errors.New("statement rejected")
	ErrMalformedInput      = errors.New("malformed input")
)

// Domain errors for item validation
var (
	ErrEmptyPath     = errors.New("empty path")
	ErrInvalidItemID = errors.New("invalid item ID")
)

var kindSentinels = map[ErrorKind]error{
	KindStoreUnavailable:    ErrStoreUnavailable,
	KindConstraintViolation: ErrConstraintViolation,
	KindNotFound:            ErrNotFound,
	KindRejectedStatement:   ErrRejectedStatement,
	KindMalformedInput:      ErrMalformedInput,
}

// Error is a classified failure. Op names the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError wraps err with a kind and operation name.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf returns the kind of the first *Error in err's chain. Unclassified
// errors report KindStoreUnavailable since every unclassified failure in this
// module originates from the database layer.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreUnavailable
}
