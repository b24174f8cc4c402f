package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"Regatta/internal/core/feeds"
	"Regatta/internal/core/posts"
)

type postgresFeedRepo struct {
	*feedRepoBase
}

// NewFeedRepository creates a new PostgreSQL feed repository.
// cursorSecret signs pagination cursors so clients cannot forge positions.
func NewFeedRepository(db *sql.DB, cursorSecret string) feeds.Repository {
	return &postgresFeedRepo{
		feedRepoBase: newFeedRepoBase(db, cursorSecret),
	}
}

// GetCommunityFeed returns posts from any of req.CommunityIDs
func (r *postgresFeedRepo) GetCommunityFeed(ctx context.Context, req feeds.FeedRequest) ([]*posts.FeedPost, *string, error) {
	return r.queryFeed(ctx, req, func(a *queryArgs) string {
		return "p.community_id = ANY(" + a.add(pq.Array(req.CommunityIDs)) + "::uuid[])"
	})
}

// GetVenueFeed returns posts published directly to req.VenueID
func (r *postgresFeedRepo) GetVenueFeed(ctx context.Context, req feeds.FeedRequest) ([]*posts.FeedPost, *string, error) {
	return r.queryFeed(ctx, req, func(a *queryArgs) string {
		return "p.venue_id = " + a.add(req.VenueID) + "::uuid"
	})
}
