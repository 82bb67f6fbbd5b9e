package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is a generic sentinel for membership/ownership failures.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError covers malformed input: bad plan candidates, non-chronological
// times, empty activity lists where the workflow requires at least one.
// Nothing is written once one of these is raised.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ExternalKind distinguishes collaborator failures the caller wants to message
// differently (rate limits and exhausted credits get specific copy).
type ExternalKind string

const (
	ExternalUpstream       ExternalKind = "upstream"
	ExternalRateLimited    ExternalKind = "rate_limited"
	ExternalQuotaExhausted ExternalKind = "quota_exhausted"
	ExternalBadPayload     ExternalKind = "bad_payload"
)

// ExternalError wraps a failed or unusable response from the AI collaborator.
type ExternalError struct {
	Kind ExternalKind
	Err  error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("external collaborator (%s): %v", e.Kind, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

func External(kind ExternalKind, err error) error {
	return &ExternalError{Kind: kind, Err: err}
}

func AsExternal(err error) (*ExternalError, bool) {
	var ee *ExternalError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}

// PersistenceError wraps a failed read/write against the relational store.
// Not retried automatically; the caller re-invokes the whole workflow step.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func Persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// ConflictError reports a failed optimistic-concurrency check: the itinerary
// revision advanced between the caller's read and its write. The caller must
// reload and retry.
type ConflictError struct {
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("itinerary revision conflict: expected %d, stored %d", e.Expected, e.Actual)
}

func Conflict(expected, actual int64) error {
	return &ConflictError{Expected: expected, Actual: actual}
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
