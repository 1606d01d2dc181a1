package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")

	ErrInconsistentData = errors.New("inconsistent stored data")
)

// ValidationError reports a single malformed field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InconsistentDataError wraps a validation failure found in stored data. It
// matches ErrInconsistentData under errors.Is but not ErrValidation. Cause
// keeps the original error for errors.As.
type InconsistentDataError struct {
	Source string
	Cause  error
}

func (e *InconsistentDataError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s: %v", ErrInconsistentData, e.Source, e.Cause)
}

func (e *InconsistentDataError) Is(target error) bool {
	return target == ErrInconsistentData
}

func NewInconsistentDataError(source string, cause error) *InconsistentDataError {
	return &InconsistentDataError{Source: source, Cause: cause}
}
