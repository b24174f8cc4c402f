package onboarding

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned by the repository on a duplicate key; steps treat it as success
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned by the repository when a referenced club, fleet or class doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrRunNotFound is returned when a run id is unknown or belongs to another user
	ErrRunNotFound = errors.New("onboarding run not found")

	// ErrInvalidTransition is returned when ContinueAnyway is called on a run that did not fail
	ErrInvalidTransition = errors.New("onboarding run is not in the error state")

	// ErrUnauthorized is returned when no authenticated user is present
	ErrUnauthorized = errors.New("unauthorized")
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
