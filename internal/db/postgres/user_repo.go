package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Regatta/internal/core/onboarding"
)

// postgresOnboardingRepo writes a sailor's profile, boats and club/fleet memberships.
// Every write is safe to repeat: memberships and profile fields upsert, and a
// duplicate real boat surfaces as onboarding.ErrAlreadyExists.
type postgresOnboardingRepo struct {
	db *sql.DB
}

// NewOnboardingRepository creates a new PostgreSQL onboarding repository
func NewOnboardingRepository(db *sql.DB) onboarding.Repository {
	return &postgresOnboardingRepo{db: db}
}

// CreateBoat adds a boat of the given class. The first boat a sailor owns becomes primary.
// A real boat takes over a sample boat of the same class, keeping its primary flag.
func (r *postgresOnboardingRepo) CreateBoat(ctx context.Context, userID, boatClassID, name string) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sailor_boats (sailor_id, class_id, name, is_primary)
		VALUES ($1, $2, $3, NOT EXISTS (SELECT 1 FROM sailor_boats WHERE sailor_id = $1))
		ON CONFLICT (sailor_id, class_id) DO UPDATE
		SET name = EXCLUDED.name, is_sample = FALSE
		WHERE sailor_boats.is_sample`,
		userID, boatClassID, name)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("boat class %s: %w", boatClassID, onboarding.ErrNotFound)
		}
		return fmt.Errorf("failed to create boat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create boat: %w", err)
	}
	if n == 0 {
		return onboarding.ErrAlreadyExists
	}
	return nil
}

// AddClubMember joins the user to a club
func (r *postgresOnboardingRepo) AddClubMember(ctx context.Context, clubID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO club_members (club_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (club_id, user_id) DO NOTHING`,
		clubID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("club %s: %w", clubID, onboarding.ErrNotFound)
		}
		return fmt.Errorf("failed to join club: %w", err)
	}
	return nil
}

// AddFleetMember joins the user to a fleet
func (r *postgresOnboardingRepo) AddFleetMember(ctx context.Context, fleetID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO fleet_members (fleet_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (fleet_id, user_id) DO NOTHING`,
		fleetID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("fleet %s: %w", fleetID, onboarding.ErrNotFound)
		}
		return fmt.Errorf("failed to join fleet: %w", err)
	}
	return nil
}

// SetExperienceLevel stores the sailor's self-reported level on their profile
func (r *postgresOnboardingRepo) SetExperienceLevel(ctx context.Context, userID, level string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, experience_level)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET experience_level = EXCLUDED.experience_level, updated_at = NOW()`,
		userID, level)
	if err != nil {
		return fmt.Errorf("failed to set experience level: %w", err)
	}
	return nil
}

// SeedSampleData gives a sailor with no boats a sample boat in the first boat class
// so the race log has something to show. It is skipped when the sailor already owns
// a boat or no boat classes exist.
func (r *postgresOnboardingRepo) SeedSampleData(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sailor_boats (sailor_id, class_id, name, is_primary, is_sample)
		SELECT $1, bc.id, 'Sample Boat', TRUE, TRUE
		FROM boat_classes bc
		WHERE NOT EXISTS (SELECT 1 FROM sailor_boats WHERE sailor_id = $1)
		ORDER BY bc.name ASC
		LIMIT 1
		ON CONFLICT (sailor_id, class_id) DO NOTHING`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}
	return nil
}

// MarkOnboardingCompleted flags the profile as onboarded, keeping the first completion time
func (r *postgresOnboardingRepo) MarkOnboardingCompleted(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, onboarding_completed, onboarding_completed_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET onboarding_completed = TRUE,
			onboarding_completed_at = COALESCE(user_profiles.onboarding_completed_at, NOW()),
			updated_at = NOW()`,
		userID)
	if err != nil {
		return fmt.Errorf("failed to mark onboarding completed: %w", err)
	}
	return nil
}
