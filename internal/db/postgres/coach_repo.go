package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Regatta/internal/core/coach"
)

type postgresCoachRepo struct {
	db *sql.DB
}

// NewCoachRepository creates a new PostgreSQL repository for stored race analyses
func NewCoachRepository(db *sql.DB) coach.Repository {
	return &postgresCoachRepo{db: db}
}

func (r *postgresCoachRepo) Create(ctx context.Context, a *coach.Analysis) error {
	model := sql.NullString{String: a.Model, Valid: a.Model != ""}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO ai_coach_analysis (id, user_id, race_session_id, action, source, model, prompt, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING created_at`,
		a.ID, a.UserID, a.RaceSessionID, a.Action, a.Source, model, a.Prompt, a.Response,
		sql.NullTime{Time: a.CreatedAt, Valid: !a.CreatedAt.IsZero()},
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

// ListBySession returns the user's analyses for one race, newest first
func (r *postgresCoachRepo) ListBySession(ctx context.Context, userID, raceSessionID string) ([]*coach.Analysis, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, race_session_id, action, source, COALESCE(model, ''), prompt, response, created_at
		FROM ai_coach_analysis
		WHERE user_id = $1 AND race_session_id = $2
		ORDER BY created_at DESC, id DESC`,
		userID, raceSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer closeRows(rows)

	result := []*coach.Analysis{}
	for rows.Next() {
		var a coach.Analysis
		if err := rows.Scan(&a.ID, &a.UserID, &a.RaceSessionID, &a.Action, &a.Source, &a.Model, &a.Prompt, &a.Response, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return result, nil
}
