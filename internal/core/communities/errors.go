package communities

import (
	"errors"
	"fmt"
)

// Domain errors for communities
var (
	// ErrCommunityNotFound is returned when a community doesn't exist
	ErrCommunityNotFound = errors.New("community not found")

	// ErrUnauthorized is returned when a membership action has no signed-in user
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInput is returned for general validation failures
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError wraps input validation errors with field details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsNotFound checks if error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCommunityNotFound)
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr) || errors.Is(err, ErrInvalidInput)
}
