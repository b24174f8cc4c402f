package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type preferencesService struct {
	repo Repository
}

// NewPreferencesService creates a new preferences service
func NewPreferencesService(repo Repository) Service {
	return &preferencesService{repo: repo}
}

func (s *preferencesService) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	prefs, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Preferences{UserID: userID, UnitSystem: DefaultUnitSystem}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	// Rows written before a unit system existed read as the default
	if !IsValidUnitSystem(prefs.UnitSystem) {
		prefs.UnitSystem = DefaultUnitSystem
	}
	return prefs, nil
}

func (s *preferencesService) SetUnitSystem(ctx context.Context, userID, unitSystem string) (*Preferences, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	unitSystem = strings.ToLower(strings.TrimSpace(unitSystem))
	if !IsValidUnitSystem(unitSystem) {
		return nil, NewValidationError("unitSystem", "must be one of: nautical, metric, imperial")
	}

	prefs, err := s.repo.UpsertUnitSystem(ctx, userID, unitSystem)
	if err != nil {
		return nil, fmt.Errorf("failed to save unit system: %w", err)
	}
	return prefs, nil
}
