package todo

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned when the user declines a confirmation.
var ErrCancelled = errors.New("cancelled by user")

// ValidationError reports rejected user input. No state changes when it
// is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Persistence operations reported by PersistenceError.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// PersistenceError reports a failed read or write against the persistent
// store. It is logged and kept for inspection, never surfaced as a
// blocking error; the in-memory list stays authoritative.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Errors returned by id resolution.
var (
	ErrNotFound    = errors.New("not found")
	ErrAmbiguousID = errors.New("ambiguous id prefix")
)

// maxAmbiguousCandidates caps the ids listed in an ambiguity error.
const maxAmbiguousCandidates = 5
