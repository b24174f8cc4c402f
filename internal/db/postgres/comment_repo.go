package postgres

import (
	"context"
	"fmt"

	"Regatta/internal/core/posts"
)

// CreateComment inserts a comment and bumps the post's comment_count in one transaction
func (r *postgresPostRepo) CreateComment(ctx context.Context, comment *posts.Comment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	if err := lockLivePost(ctx, tx, comment.PostID); err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO post_comments (id, post_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		comment.ID, comment.PostID, comment.AuthorID, comment.Body,
	).Scan(&comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE community_posts SET comment_count = comment_count + 1 WHERE id = $1`, comment.PostID); err != nil {
		return fmt.Errorf("failed to update comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit comment: %w", err)
	}
	return nil
}
