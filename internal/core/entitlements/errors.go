package entitlements

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by the repository when the user has no entitlement row
	ErrNotFound = errors.New("entitlement not found")

	// ErrUnauthorized is returned when no authenticated user is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPurchaseCancelled is returned by a billing provider when the user backed out
	ErrPurchaseCancelled = errors.New("purchase cancelled")
)

// BillingError is a non-success response from the billing provider
type BillingError struct {
	Message    string
	StatusCode int
}

func (e *BillingError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billing provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("billing provider returned status %d: %s", e.StatusCode, e.Message)
}

// IsBillingError checks if err came from the billing provider
func IsBillingError(err error) bool {
	var be *BillingError
	return errors.As(err, &be)
}
