package postgres

import (
	"context"
	"fmt"

	"Regatta/internal/core/communities"
)

// AddMember inserts the membership and bumps member_count in one transaction.
// An existing membership leaves the counter untouched and returns false.
func (r *postgresCommunityRepo) AddMember(ctx context.Context, communityID, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	result, err := tx.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (community_id, user_id) DO NOTHING`,
		communityID, userID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, communities.ErrCommunityNotFound
		}
		return false, fmt.Errorf("failed to add member: %w", err)
	}

	added, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check membership insert: %w", err)
	}
	if added == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE communities SET member_count = member_count + 1 WHERE id = $1`, communityID); err != nil {
		return false, fmt.Errorf("failed to update member count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit membership: %w", err)
	}
	return true, nil
}

// RemoveMember deletes the membership and decrements member_count in one transaction
func (r *postgresCommunityRepo) RemoveMember(ctx context.Context, communityID, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	result, err := tx.ExecContext(ctx,
		`DELETE FROM community_members WHERE community_id = $1 AND user_id = $2`,
		communityID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check membership delete: %w", err)
	}
	if removed == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE communities SET member_count = GREATEST(member_count - 1, 0) WHERE id = $1`, communityID); err != nil {
		return false, fmt.Errorf("failed to update member count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit membership removal: %w", err)
	}
	return true, nil
}

// IsMember reports whether the user belongs to the community
func (r *postgresCommunityRepo) IsMember(ctx context.Context, communityID, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM community_members WHERE community_id = $1 AND user_id = $2
		)`, communityID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}

// ListMemberCommunityIDs returns every community the user has joined, oldest membership first
func (r *postgresCommunityRepo) ListMemberCommunityIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT community_id FROM community_members
		WHERE user_id = $1
		ORDER BY joined_at ASC, community_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer closeRows(rows)

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}
	return ids, nil
}
