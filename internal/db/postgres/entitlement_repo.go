package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Regatta/internal/core/entitlements"
)

type postgresEntitlementRepo struct {
	db *sql.DB
}

// NewEntitlementRepository creates a new PostgreSQL entitlement repository
func NewEntitlementRepository(db *sql.DB) entitlements.Repository {
	return &postgresEntitlementRepo{db: db}
}

func (r *postgresEntitlementRepo) Get(ctx context.Context, userID string) (*entitlements.Entitlement, error) {
	var (
		ent       = entitlements.Entitlement{UserID: userID}
		productID sql.NullString
		expiresAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT tier, product_id, is_active, is_trialing, expires_at, updated_at
		FROM entitlements
		WHERE user_id = $1`, userID,
	).Scan(&ent.Tier, &productID, &ent.IsActive, &ent.IsTrialing, &expiresAt, &ent.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, entitlements.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entitlement: %w", err)
	}

	ent.ProductID = productID.String
	if expiresAt.Valid {
		ent.ExpiresAt = &expiresAt.Time
	}
	return &ent, nil
}

// Upsert replaces the user's entitlement and stamps UpdatedAt
func (r *postgresEntitlementRepo) Upsert(ctx context.Context, e *entitlements.Entitlement) error {
	productID := sql.NullString{String: e.ProductID, Valid: e.ProductID != ""}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO entitlements (user_id, tier, product_id, is_active, is_trialing, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET tier = EXCLUDED.tier,
			product_id = EXCLUDED.product_id,
			is_active = EXCLUDED.is_active,
			is_trialing = EXCLUDED.is_trialing,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING updated_at`,
		e.UserID, e.Tier, productID, e.IsActive, e.IsTrialing, e.ExpiresAt,
	).Scan(&e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert entitlement: %w", err)
	}
	return nil
}

// ExpireLapsed deactivates every active entitlement whose expiry is at or before now
func (r *postgresEntitlementRepo) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE entitlements
		SET is_active = FALSE, is_trialing = FALSE, updated_at = NOW()
		WHERE is_active AND expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire entitlements: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired entitlements: %w", err)
	}
	return n, nil
}
