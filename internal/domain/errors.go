package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query cannot be empty")
	// ErrValidation signals a rejected request field.
	ErrValidation = errors.New("validation failed")
	// ErrVectorStoreUnavailable signals a vector index or embedding service failure.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
	// ErrDatabaseUnavailable signals a full-text store connectivity failure.
	ErrDatabaseUnavailable = errors.New("database unavailable")
	// ErrTimeout signals a backend operation timeout.
	ErrTimeout = errors.New("search operation timed out")
	// ErrUnsupportedMode signals a mode that slipped past validation.
	ErrUnsupportedMode = errors.New("unsupported search mode")
)

// ValidationError names the offending request field and the reason it was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a field-level validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
