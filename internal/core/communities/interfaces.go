package communities

import "context"

// Repository defines the interface for community data persistence
type Repository interface {
	GetByID(ctx context.Context, id, viewerID string) (*Community, error)
	GetBySlug(ctx context.Context, slug, viewerID string) (*Community, error)
	List(ctx context.Context, req ListCommunitiesRequest) ([]*Community, error)

	// AddMember is idempotent: it returns false and leaves member_count alone
	// when the membership already exists
	AddMember(ctx context.Context, communityID, userID string) (bool, error)
	// RemoveMember is idempotent in the same way
	RemoveMember(ctx context.Context, communityID, userID string) (bool, error)
	IsMember(ctx context.Context, communityID, userID string) (bool, error)
	ListMemberCommunityIDs(ctx context.Context, userID string) ([]string, error)
}

// Service defines the interface for community business logic
type Service interface {
	// identifier can be a community id or its slug
	GetCommunity(ctx context.Context, identifier, viewerID string) (*Community, error)
	ListCommunities(ctx context.Context, req ListCommunitiesRequest) ([]*Community, error)

	// JoinCommunity and LeaveCommunity return the refetched community so the caller
	// sees the server's isMember and memberCount
	JoinCommunity(ctx context.Context, userID, identifier string) (*Community, error)
	LeaveCommunity(ctx context.Context, userID, identifier string) (*Community, error)

	// ListJoinedCommunityIDs seeds the feed composer
	ListJoinedCommunityIDs(ctx context.Context, userID string) ([]string, error)

	ResolveCommunityIdentifier(ctx context.Context, identifier string) (string, error)
}
