package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Regatta/internal/core/preferences"
)

type postgresPreferencesRepo struct {
	db *sql.DB
}

// NewPreferencesRepository creates a new PostgreSQL preferences repository
func NewPreferencesRepository(db *sql.DB) preferences.Repository {
	return &postgresPreferencesRepo{db: db}
}

func (r *postgresPreferencesRepo) Get(ctx context.Context, userID string) (*preferences.Preferences, error) {
	var (
		prefs     = preferences.Preferences{UserID: userID}
		updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT unit_system, updated_at FROM user_preferences WHERE user_id = $1`, userID,
	).Scan(&prefs.UnitSystem, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, preferences.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	if updatedAt.Valid {
		prefs.UpdatedAt = &updatedAt.Time
	}
	return &prefs, nil
}

func (r *postgresPreferencesRepo) UpsertUnitSystem(ctx context.Context, userID, unitSystem string) (*preferences.Preferences, error) {
	var (
		prefs     = preferences.Preferences{UserID: userID}
		updatedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_preferences (user_id, unit_system, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET unit_system = EXCLUDED.unit_system, updated_at = NOW()
		RETURNING unit_system, updated_at`,
		userID, unitSystem,
	).Scan(&prefs.UnitSystem, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	if updatedAt.Valid {
		prefs.UpdatedAt = &updatedAt.Time
	}
	return &prefs, nil
}
