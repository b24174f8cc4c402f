package posts

import (
	"time"
)

// Post types a sailor can publish
const (
	PostTypeDiscussion = "discussion"
	PostTypeQuestion   = "question"
	PostTypeRaceReport = "race_report"
	PostTypeTip        = "tip"
	PostTypeConditions = "conditions"
	PostTypeEvent      = "event"
)

var validPostTypes = map[string]bool{
	PostTypeDiscussion: true,
	PostTypeQuestion:   true,
	PostTypeRaceReport: true,
	PostTypeTip:        true,
	PostTypeConditions: true,
	PostTypeEvent:      true,
}

// IsValidPostType reports whether t is a known post type
func IsValidPostType(t string) bool {
	return validPostTypes[t]
}

const maxBodyLength = 10000

// Post is a row of community_posts.
// Body, type and scope never change after creation; only the counters move,
// and only through the vote and comment operations.
type Post struct {
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	CommunityID  *string   `json:"communityId,omitempty" db:"community_id"`
	VenueID      *string   `json:"venueId,omitempty" db:"venue_id"`
	ID           string    `json:"id" db:"id"`
	AuthorID     string    `json:"authorId" db:"author_id"`
	Body         string    `json:"body" db:"body"`
	PostType     string    `json:"postType" db:"post_type"`
	VoteCount    int       `json:"voteCount" db:"vote_count"`
	CommentCount int       `json:"commentCount" db:"comment_count"`
}

// AuthorView is the public projection of a post's author
type AuthorView struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// ViewerState is the caller's relationship to a post
type ViewerState struct {
	Voted bool `json:"voted"`
}

// FeedPost is a post hydrated for display in a feed
type FeedPost struct {
	CreatedAt    time.Time    `json:"createdAt"`
	Author       *AuthorView  `json:"author"`
	CommunityID  *string      `json:"communityId,omitempty"`
	VenueID      *string      `json:"venueId,omitempty"`
	Viewer       *ViewerState `json:"viewer,omitempty"`
	ID           string       `json:"id"`
	Body         string       `json:"body"`
	PostType     string       `json:"postType"`
	VoteCount    int          `json:"voteCount"`
	CommentCount int          `json:"commentCount"`
}

// Comment is a reply on a post
type Comment struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
}

// CreatePostRequest is the input for publishing a post.
// Exactly one of CommunityID and VenueID must be set.
type CreatePostRequest struct {
	CommunityID *string `json:"communityId,omitempty"`
	VenueID     *string `json:"venueId,omitempty"`
	AuthorID    string  `json:"-"`
	Body        string  `json:"body"`
	PostType    string  `json:"postType"`
}

// CreateCommentRequest is the input for commenting on a post
type CreateCommentRequest struct {
	PostID   string `json:"-"`
	AuthorID string `json:"-"`
	Body     string `json:"body"`
}
