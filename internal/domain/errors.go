package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across repositories and services.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict indicates an optimistic-concurrency check failed:
	// the caller's expected version no longer matches the stored version.
	ErrVersionConflict = errors.New("version conflict")

	// ErrIdempotencyConflict indicates an idempotency key was reused with a
	// different payload than the one originally recorded.
	ErrIdempotencyConflict = errors.New("idempotency key reused with different payload")
)

// ValidationError reports malformed input. It is raised before any
// persistence happens, so the caller can correct the input and resubmit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnresolvedIdentifierError reports a category identifier that maps to no
// canonical code. It carries the offending value so callers can log or
// surface it; it is a recoverable condition, not a fatal one.
type UnresolvedIdentifierError struct {
	Identifier string
}

func (e *UnresolvedIdentifierError) Error() string {
	return fmt.Sprintf("unresolved category identifier %q", e.Identifier)
}

// StateTransitionError reports an illegal baseline lifecycle transition,
// including self-acceptance violations.
type StateTransitionError struct {
	From   BaselineStatus
	To     BaselineStatus
	Reason string
}

func (e *StateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot transition baseline from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot transition baseline from %s to %s", e.From, e.To)
}

// IsConflict reports whether err is a concurrency conflict of either kind.
// Callers should re-fetch and retry on conflicts rather than fix input.
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrIdempotencyConflict)
}
