package feeds

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"Regatta/internal/core/posts"
)

type feedService struct {
	repo   Repository
	joined JoinedCommunities
}

// NewFeedService creates a new feed service
func NewFeedService(repo Repository, joined JoinedCommunities) Service {
	return &feedService{
		repo:   repo,
		joined: joined,
	}
}

// GetFeed retrieves one page of posts
func (s *feedService) GetFeed(ctx context.Context, req FeedRequest) (*FeedResponse, error) {
	// 1. Validate request
	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	// 2. Pick the source; an empty community set short-circuits without a query
	var (
		feedPosts []*posts.FeedPost
		cursor    *string
		err       error
	)
	switch {
	case req.IsVenueScoped():
		feedPosts, cursor, err = s.repo.GetVenueFeed(ctx, req)
	case len(req.CommunityIDs) == 0:
		return emptyResponse(), nil
	default:
		feedPosts, cursor, err = s.repo.GetCommunityFeed(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}

	if feedPosts == nil {
		feedPosts = []*posts.FeedPost{}
	}

	// 3. Return the page in repository order
	return &FeedResponse{
		Feed:        feedPosts,
		Cursor:      cursor,
		HasNextPage: cursor != nil,
	}, nil
}

// GetJoinedFeed retrieves a page of posts from every community the viewer joined
func (s *feedService) GetJoinedFeed(ctx context.Context, req FeedRequest) (*FeedResponse, error) {
	if req.ViewerID == "" {
		return nil, ErrUnauthorized
	}

	ids, err := s.joined.ListJoinedCommunityIDs(ctx, req.ViewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined communities: %w", err)
	}

	req.CommunityIDs = ids
	req.VenueID = ""
	return s.GetFeed(ctx, req)
}

// validateRequest validates the feed request parameters and applies defaults
func (s *feedService) validateRequest(req *FeedRequest) error {
	if req.Sort == "" {
		req.Sort = SortHot
	}
	if !validSorts[req.Sort] {
		return NewValidationError("sort", "sort must be one of: hot, new, rising, top")
	}

	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		return NewValidationError("limit", fmt.Sprintf("limit must not exceed %d", maxLimit))
	}

	// Timeframe only narrows top
	if req.Sort == SortTop && req.Timeframe == "" {
		req.Timeframe = "day"
	}
	if req.Timeframe != "" && !validTimeframes[req.Timeframe] {
		return NewValidationError("timeframe", "timeframe must be one of: hour, day, week, month, year, all")
	}

	if req.PostType != "" && !posts.IsValidPostType(req.PostType) {
		return NewValidationError("postType", "unknown post type")
	}

	if req.VenueID != "" {
		if _, err := uuid.Parse(req.VenueID); err != nil {
			return NewValidationError("venueId", "must be a valid id")
		}
		return nil
	}

	ids, err := normalizeCommunityIDs(req.CommunityIDs)
	if err != nil {
		return err
	}
	req.CommunityIDs = ids
	return nil
}

// normalizeCommunityIDs validates ids and drops duplicates, keeping first-seen order
func normalizeCommunityIDs(ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, NewValidationError("communityIds", fmt.Sprintf("invalid community id %q", id))
		}
		canonical := parsed.String()
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		out = append(out, canonical)
	}
	if len(out) > maxCommunities {
		return nil, NewValidationError("communityIds", fmt.Sprintf("at most %d communities per feed", maxCommunities))
	}
	return out, nil
}
