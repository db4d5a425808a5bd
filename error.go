package ladder

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindConfigMissing ErrorKind = iota
	KindTransport
	KindDecode
	KindNoData
	KindOrderPlacement
	KindOrderCancellation
	KindSerialization
)

func (ek ErrorKind) String() string {
	switch ek {
	case KindConfigMissing:
		return "config missing"
	case KindTransport:
		return "transport error"
	case KindDecode:
		return "decode error"
	case KindNoData:
		return "no data"
	case KindOrderPlacement:
		return "order placement error"
	case KindOrderCancellation:
		return "order cancellation error"
	case KindSerialization:
		return "serialization error"
	default:
		panic("unknown error kind")
	}
}

// Fatal reports whether an error of this kind should stop the process.
// Everything except missing configuration is scoped to a single cycle.
func (ek ErrorKind) Fatal() bool {
	return ek == KindConfigMissing
}

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind ErrorKind, op string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %v", e.Op, e.Kind)
	}

	return fmt.Sprintf("%v: %v: [%v]", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can test with
// errors.Is(err, &ladder.Error{Kind: ladder.KindNoData}).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return other.Kind == e.Kind
}

func KindOf(err error) (ErrorKind, bool) {
	var ladderErr *Error
	if errors.As(err, &ladderErr) {
		return ladderErr.Kind, true
	}

	return -1, false
}

func IsKind(err error, kind ErrorKind) bool {
	actual, ok := KindOf(err)
	return ok && actual == kind
}
