package postgres

import (
	"context"
	"fmt"
)

// AddVote records the user's vote and bumps vote_count.
// Voting twice is a no-op that returns false.
func (r *postgresPostRepo) AddVote(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := lockLivePost(ctx, tx, postID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO post_votes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check vote insert: %w", err)
	}
	if inserted == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE community_posts SET vote_count = vote_count + 1 WHERE id = $1`, postID); err != nil {
		return false, fmt.Errorf("failed to update vote count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit vote: %w", err)
	}
	return true, nil
}

// RemoveVote deletes the user's vote and decrements vote_count.
// Removing a vote that doesn't exist is a no-op that returns false.
func (r *postgresPostRepo) RemoveVote(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := lockLivePost(ctx, tx, postID); err != nil {
		return false, err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM post_votes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete vote: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check vote delete: %w", err)
	}
	if deleted == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE community_posts SET vote_count = GREATEST(vote_count - 1, 0) WHERE id = $1`, postID); err != nil {
		return false, fmt.Errorf("failed to update vote count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit vote removal: %w", err)
	}
	return true, nil
}
