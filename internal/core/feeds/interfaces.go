package feeds

import (
	"context"

	"Regatta/internal/core/posts"
)

// Service defines the business logic interface for feeds
type Service interface {
	// GetFeed returns one page of posts from the selected source
	GetFeed(ctx context.Context, req FeedRequest) (*FeedResponse, error)

	// GetJoinedFeed is GetFeed over every community the viewer has joined
	GetJoinedFeed(ctx context.Context, req FeedRequest) (*FeedResponse, error)
}

// Repository defines the data access interface for feeds.
// Both queries return hydrated posts in ranking order and a cursor when
// another page exists.
type Repository interface {
	GetCommunityFeed(ctx context.Context, req FeedRequest) ([]*posts.FeedPost, *string, error)
	GetVenueFeed(ctx context.Context, req FeedRequest) ([]*posts.FeedPost, *string, error)
}

// JoinedCommunities lists the communities a user belongs to
type JoinedCommunities interface {
	ListJoinedCommunityIDs(ctx context.Context, userID string) ([]string, error)
}

// PageFetcher loads a single page. Service satisfies it; so does an HTTP client.
type PageFetcher interface {
	GetFeed(ctx context.Context, req FeedRequest) (*FeedResponse, error)
}
