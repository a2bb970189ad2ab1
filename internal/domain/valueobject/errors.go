package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

// The three error classes every operation in this service can surface.
// Callers match them with errors.Is; the concrete types below attach detail.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// ---------------------------------------------------------------------------
// ValidationError
// ---------------------------------------------------------------------------

// ValidationError describes input rejected before any state was mutated.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Is makes the error match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ---------------------------------------------------------------------------
// NotFoundError
// ---------------------------------------------------------------------------

// NotFoundError describes a lookup of an unknown record, or of a record that
// does not belong to the requesting borrower.
type NotFoundError struct {
	Kind string
	ID   string
}

// NewNotFoundError builds a NotFoundError for the given record kind and id.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Is makes the error match ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ---------------------------------------------------------------------------
// StatusConflictError
// ---------------------------------------------------------------------------

// StatusConflictError describes a transition attempted from a status that
// does not permit it. It names both the current and the requested state.
type StatusConflictError struct {
	Current   string
	Requested string
}

// NewStatusConflictError builds a StatusConflictError.
func NewStatusConflictError(current, requested string) *StatusConflictError {
	return &StatusConflictError{Current: current, Requested: requested}
}

func (e *StatusConflictError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.Current, e.Requested)
}

// Is makes the error match ErrConflict.
func (e *StatusConflictError) Is(target error) bool { return target == ErrConflict }
