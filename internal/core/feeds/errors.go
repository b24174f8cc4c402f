package feeds

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCursor is returned when the pagination cursor is invalid
	ErrInvalidCursor = errors.New("invalid pagination cursor")

	// ErrUnauthorized is returned when a joined-communities feed has no viewer
	ErrUnauthorized = errors.New("unauthorized")

	// ErrComposerClosed is returned by a Composer after Close
	ErrComposerClosed = errors.New("feed composer closed")

	// ErrFetchInProgress is returned when LoadNext is called while a page is loading
	ErrFetchInProgress = errors.New("a page is already loading")

	// ErrStaleQuery is returned to a LoadNext whose query was replaced mid-flight;
	// its page was discarded
	ErrStaleQuery = errors.New("feed query changed while loading")
)

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
