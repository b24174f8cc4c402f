package preferences

import (
	"context"
	"time"
)

// Unit systems for distances and speeds
const (
	UnitSystemNautical = "nautical"
	UnitSystemMetric   = "metric"
	UnitSystemImperial = "imperial"
)

// DefaultUnitSystem applies until the user picks one
const DefaultUnitSystem = UnitSystemNautical

var validUnitSystems = map[string]bool{
	UnitSystemNautical: true,
	UnitSystemMetric:   true,
	UnitSystemImperial: true,
}

// IsValidUnitSystem reports whether s is a known unit system
func IsValidUnitSystem(s string) bool {
	return validUnitSystems[s]
}

// Preferences holds a user's display settings
type Preferences struct {
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
	UserID     string     `json:"userId"`
	UnitSystem string     `json:"unitSystem"`
}

// Service defines the business logic interface for preferences
type Service interface {
	// GetPreferences returns stored preferences, or defaults when none were saved
	GetPreferences(ctx context.Context, userID string) (*Preferences, error)

	// SetUnitSystem stores the user's unit system and returns the saved preferences
	SetUnitSystem(ctx context.Context, userID, unitSystem string) (*Preferences, error)
}

// Repository defines the data access interface for preferences
type Repository interface {
	// Get returns ErrNotFound when the user has no stored preferences
	Get(ctx context.Context, userID string) (*Preferences, error)

	// UpsertUnitSystem inserts or updates the unit system
	UpsertUnitSystem(ctx context.Context, userID, unitSystem string) (*Preferences, error)
}
