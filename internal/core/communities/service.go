package communities

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,62}[a-z0-9])?$`)

type communityService struct {
	repo      Repository
	slugCache *lru.Cache[string, string] // slug -> id; slugs never change once assigned
	logger    *slog.Logger
}

// NewCommunityService creates a new community service
func NewCommunityService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, string](1024)
	if err != nil {
		// Only fails for a non-positive size
		panic(fmt.Sprintf("failed to create slug cache: %v", err))
	}
	return &communityService{
		repo:      repo,
		slugCache: cache,
		logger:    logger,
	}
}

// GetCommunity retrieves a community by id or slug
func (s *communityService) GetCommunity(ctx context.Context, identifier, viewerID string) (*Community, error) {
	id, err := s.ResolveCommunityIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, viewerID)
}

// ListCommunities lists communities with the viewer's membership flags
func (s *communityService) ListCommunities(ctx context.Context, req ListCommunitiesRequest) ([]*Community, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	if req.Limit > 100 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	if req.Type != "" && !validTypes[req.Type] {
		return nil, NewValidationError("type", "must be one of: club, fleet, class, venue, general")
	}
	if req.JoinedOnly && req.ViewerID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.List(ctx, req)
}

// JoinCommunity adds the user to a community. Joining twice is a no-op.
func (s *communityService) JoinCommunity(ctx context.Context, userID, identifier string) (*Community, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	id, err := s.ResolveCommunityIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	added, err := s.repo.AddMember(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to join community: %w", err)
	}
	s.logger.Info("community join",
		"community_id", id,
		"user_id", userID,
		"already_member", !added)

	return s.repo.GetByID(ctx, id, userID)
}

// LeaveCommunity removes the user from a community. Leaving twice is a no-op.
func (s *communityService) LeaveCommunity(ctx context.Context, userID, identifier string) (*Community, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	id, err := s.ResolveCommunityIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveMember(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to leave community: %w", err)
	}
	s.logger.Info("community leave",
		"community_id", id,
		"user_id", userID,
		"was_member", removed)

	return s.repo.GetByID(ctx, id, userID)
}

// ListJoinedCommunityIDs returns the ids of every community the user belongs to
func (s *communityService) ListJoinedCommunityIDs(ctx context.Context, userID string) ([]string, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	return s.repo.ListMemberCommunityIDs(ctx, userID)
}

// ResolveCommunityIdentifier returns the community id for an id or slug
func (s *communityService) ResolveCommunityIdentifier(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", ErrInvalidInput
	}

	if _, err := uuid.Parse(identifier); err == nil {
		return identifier, nil
	}

	slug := strings.ToLower(identifier)
	if !slugRegex.MatchString(slug) {
		return "", NewValidationError("identifier", "must be a community id or slug")
	}

	if id, ok := s.slugCache.Get(slug); ok {
		return id, nil
	}

	community, err := s.repo.GetBySlug(ctx, slug, "")
	if err != nil {
		return "", err
	}
	s.slugCache.Add(slug, community.ID)
	return community.ID, nil
}
