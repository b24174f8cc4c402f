package posts

import "context"

// Service defines the business logic interface for posts
type Service interface {
	// CreatePost validates and stores a new post, returning it hydrated for the feed
	CreatePost(ctx context.Context, req CreatePostRequest) (*FeedPost, error)

	// GetPost returns a single post with the viewer's vote state
	GetPost(ctx context.Context, postID, viewerID string) (*FeedPost, error)

	// Vote and Unvote are idempotent and return the refetched post
	Vote(ctx context.Context, postID, userID string) (*FeedPost, error)
	Unvote(ctx context.Context, postID, userID string) (*FeedPost, error)

	// AddComment stores a comment and bumps the post's comment counter
	AddComment(ctx context.Context, req CreateCommentRequest) (*Comment, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetFeedPost(ctx context.Context, postID, viewerID string) (*FeedPost, error)

	// AddVote returns false when the vote already existed (counter untouched)
	AddVote(ctx context.Context, postID, userID string) (bool, error)
	// RemoveVote returns false when there was no vote to remove
	RemoveVote(ctx context.Context, postID, userID string) (bool, error)

	CreateComment(ctx context.Context, comment *Comment) error
}

// MembershipChecker reports community membership. Implemented by the community repository.
type MembershipChecker interface {
	IsMember(ctx context.Context, communityID, userID string) (bool, error)
}
