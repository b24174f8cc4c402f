package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Regatta/internal/core/posts"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

// Create inserts a post and bumps its community's post_count in one transaction
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO community_posts (id, author_id, community_id, venue_id, body, post_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, vote_count, comment_count`,
		post.ID, post.AuthorID, post.CommunityID, post.VenueID, post.Body, post.PostType,
	).Scan(&post.CreatedAt, &post.VoteCount, &post.CommentCount)
	if err != nil {
		if isForeignKeyViolation(err) {
			if post.CommunityID != nil {
				return posts.ErrCommunityNotFound
			}
			return posts.ErrVenueNotFound
		}
		if isCheckViolation(err) {
			return posts.NewValidationError("postType", "post violates a table constraint")
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	if post.CommunityID != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE communities SET post_count = post_count + 1 WHERE id = $1`, *post.CommunityID); err != nil {
			return fmt.Errorf("failed to update post count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	return nil
}

// GetFeedPost returns a single hydrated post with the viewer's vote state
func (r *postgresPostRepo) GetFeedPost(ctx context.Context, postID, viewerID string) (*posts.FeedPost, error) {
	query := `
		SELECT
			p.id, p.author_id, COALESCE(up.display_name, ''), up.avatar_url,
			p.community_id, p.venue_id, p.body, p.post_type,
			p.vote_count, p.comment_count, p.created_at,
			NULL::float8 AS rank,
			EXISTS (
				SELECT 1 FROM post_votes pv WHERE pv.post_id = p.id AND pv.user_id = $2::uuid
			) AS voted
		FROM community_posts p
		LEFT JOIN user_profiles up ON up.user_id = p.author_id
		WHERE p.id = $1 AND p.deleted_at IS NULL`

	post, _, err := scanFeedPost(r.db.QueryRowContext(ctx, query, postID, nullableUUID(viewerID)), viewerID != "")
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// lockLivePost locks the post row for a counter update, failing when it is missing or deleted
func lockLivePost(ctx context.Context, tx *sql.Tx, postID string) error {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM community_posts WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, postID).Scan(&id)
	if err == sql.ErrNoRows {
		return posts.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock post: %w", err)
	}
	return nil
}
