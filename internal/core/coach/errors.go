package coach

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse is returned when the proxy answer has no usable completion
	ErrMalformedResponse = errors.New("coach returned a malformed response")

	// ErrUnavailable is returned when no proxy is configured or its circuit is open
	ErrUnavailable = errors.New("coach is unavailable")

	// ErrUnauthorized is returned when no authenticated user is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned when an analysis doesn't exist
	ErrNotFound = errors.New("analysis not found")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
