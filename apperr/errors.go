// Package apperr defines the error kinds shared across adapters, the
// Ingestor, and the Coordinator, following the error-handling design:
// sentinels for closed conditions, two wrapping constructors for the
// open-ended remote-failure kinds.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when a keyword list is empty after normalization.
	ErrEmptyQuery = errors.New("empty query after normalization")

	// ErrConstraintConflict marks a duplicate-key condition that callers
	// must treat as a no-op, never surfaced further.
	ErrConstraintConflict = errors.New("constraint conflict")

	// ErrScoringIncomplete signals that get_score was called before
	// scoring finished for a search; it is a NotReady signal, not a failure.
	ErrScoringIncomplete = errors.New("scoring not yet complete")

	// ErrProgrammerError marks a referential-integrity violation or a
	// broken invariant. Fatal; no silent recovery.
	ErrProgrammerError = errors.New("programmer error")
)

// TransientError wraps a failure the caller should retry (network
// timeouts, 5xx responses). The PubMed adapter retries it with
// exponential backoff (up to 3 attempts) before returning it; the
// CrossRef, OpenAlex and Europe PMC adapters return it on the first
// failure without retrying.
type TransientError struct {
	cause error
	msg   string
}

func (e *TransientError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *TransientError) Unwrap() error { return e.cause }

// Transient builds a TransientError.
func Transient(cause error, msg string) error {
	return &TransientError{cause: cause, msg: msg}
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// PermanentError wraps a failure the caller should not retry (malformed
// upstream documents, schema mismatches).
type PermanentError struct {
	cause error
	msg   string
}

func (e *PermanentError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *PermanentError) Unwrap() error { return e.cause }

// Permanent builds a PermanentError.
func Permanent(cause error, msg string) error {
	return &PermanentError{cause: cause, msg: msg}
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// PersistenceError wraps a storage-engine failure. The caller's
// transaction has already been rolled back by the time this surfaces.
type PersistenceError struct {
	cause error
	op    string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.op, e.cause)
}

func (e *PersistenceError) Unwrap() error { return e.cause }

// Persistence builds a PersistenceError.
func Persistence(op string, cause error) error {
	return &PersistenceError{op: op, cause: cause}
}
