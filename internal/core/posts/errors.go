package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for common post operations
var (
	// ErrNotFound is returned when a post doesn't exist
	ErrNotFound = errors.New("post not found")

	// ErrCommunityNotFound is returned when the target community doesn't exist
	ErrCommunityNotFound = errors.New("community not found")

	// ErrVenueNotFound is returned when the target venue doesn't exist
	ErrVenueNotFound = errors.New("venue not found")

	// ErrNotMember is returned when posting to a community the author hasn't joined
	ErrNotMember = errors.New("join the community before posting")

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
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsNotFound checks if error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCommunityNotFound) ||
		errors.Is(err, ErrVenueNotFound)
}
