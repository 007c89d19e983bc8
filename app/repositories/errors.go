package repositories

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies storage failures so callers can react without
// inspecting driver specific errors.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnavailable
	KindConstraint
	KindNotFound
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindConstraint:
		return "constraint violation"
	case KindNotFound:
		return "not found"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

var (
	ErrNotFound    = errors.New("record not found")
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("storage unavailable")
	ErrTransient   = errors.New("transient storage failure")
)

var sentinels = map[ErrorKind]error{
	KindNotFound:    ErrNotFound,
	KindConstraint:  ErrConstraint,
	KindUnavailable: ErrUnavailable,
	KindTransient:   ErrTransient,
}

// StoreError is returned by every repository implementation.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

// NewStoreError wraps err as a failure of op.
func NewStoreError(op string, kind ErrorKind, err error) *StoreError {
	return &StoreError{Op: op, Kind: kind, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrConstraint) and friends match on the kind.
func (e *StoreError) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && target == sentinel
}

// KindOf returns the kind of err. Plain sentinel errors and context errors
// are classified too; anything else is KindInternal.
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindInternal
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	return KindOf(err) == KindConstraint
}

// NotFound builds a not-found error for an entity id.
func NotFound(op, entity string, id int64) error {
	return NewStoreError(op, KindNotFound, fmt.Errorf("%s %d", entity, id))
}
