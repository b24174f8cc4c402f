package posts

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type postService struct {
	repo    Repository
	members MembershipChecker
	now     func() time.Time
}

// NewPostService creates a new post service
func NewPostService(repo Repository, members MembershipChecker) Service {
	return &postService{
		repo:    repo,
		members: members,
		now:     time.Now,
	}
}

// CreatePost creates a new post in a community or at a venue
// Flow:
// 1. Validate input (no database access)
// 2. For community posts, require membership
// 3. Insert and return the hydrated post
func (s *postService) CreatePost(ctx context.Context, req CreatePostRequest) (*FeedPost, error) {
	if err := s.validateCreateRequest(&req); err != nil {
		return nil, err
	}

	if req.CommunityID != nil {
		isMember, err := s.members.IsMember(ctx, *req.CommunityID, req.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
		if !isMember {
			return nil, ErrNotMember
		}
	}

	post := &Post{
		ID:          uuid.NewString(),
		AuthorID:    req.AuthorID,
		Body:        req.Body,
		PostType:    req.PostType,
		CommunityID: req.CommunityID,
		VenueID:     req.VenueID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.repo.GetFeedPost(ctx, post.ID, req.AuthorID)
}

// GetPost returns a post hydrated with the viewer's vote state
func (s *postService) GetPost(ctx context.Context, postID, viewerID string) (*FeedPost, error) {
	if err := validateID("postId", postID); err != nil {
		return nil, err
	}
	return s.repo.GetFeedPost(ctx, postID, viewerID)
}

// Vote records the user's vote. Voting twice is a no-op.
func (s *postService) Vote(ctx context.Context, postID, userID string) (*FeedPost, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateID("postId", postID); err != nil {
		return nil, err
	}
	if _, err := s.repo.AddVote(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetFeedPost(ctx, postID, userID)
}

// Unvote removes the user's vote. Removing a missing vote is a no-op.
func (s *postService) Unvote(ctx context.Context, postID, userID string) (*FeedPost, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateID("postId", postID); err != nil {
		return nil, err
	}
	if _, err := s.repo.RemoveVote(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetFeedPost(ctx, postID, userID)
}

// AddComment stores a comment on a post
func (s *postService) AddComment(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	if req.AuthorID == "" {
		return nil, ErrUnauthorized
	}
	if err := validateID("postId", req.PostID); err != nil {
		return nil, err
	}
	body, err := validateBody(req.Body)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.NewString(),
		PostID:    req.PostID,
		AuthorID:  req.AuthorID,
		Body:      body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *postService) validateCreateRequest(req *CreatePostRequest) error {
	if req.AuthorID == "" {
		return ErrUnauthorized
	}

	body, err := validateBody(req.Body)
	if err != nil {
		return err
	}
	req.Body = body

	if req.PostType == "" {
		req.PostType = PostTypeDiscussion
	}
	if !IsValidPostType(req.PostType) {
		return NewValidationError("postType", "unknown post type")
	}

	// Empty strings from JSON clients mean "absent"
	if req.CommunityID != nil && *req.CommunityID == "" {
		req.CommunityID = nil
	}
	if req.VenueID != nil && *req.VenueID == "" {
		req.VenueID = nil
	}

	switch {
	case req.CommunityID == nil && req.VenueID == nil:
		return NewValidationError("communityId", "either communityId or venueId is required")
	case req.CommunityID != nil && req.VenueID != nil:
		return NewValidationError("venueId", "a post belongs to a community or a venue, not both")
	case req.CommunityID != nil:
		return validateID("communityId", *req.CommunityID)
	default:
		return validateID("venueId", *req.VenueID)
	}
}

func validateBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", NewValidationError("body", "body is required")
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return "", NewValidationError("body", fmt.Sprintf("body must not exceed %d characters", maxBodyLength))
	}
	return body, nil
}

func validateID(field, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewValidationError(field, "must be a valid id")
	}
	return nil
}
