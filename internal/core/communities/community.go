package communities

import (
	"time"
)

// Community types
const (
	TypeClub    = "club"
	TypeFleet   = "fleet"
	TypeClass   = "class"
	TypeVenue   = "venue"
	TypeGeneral = "general"
)

var validTypes = map[string]bool{
	TypeClub:    true,
	TypeFleet:   true,
	TypeClass:   true,
	TypeVenue:   true,
	TypeGeneral: true,
}

// Community is a group sailors join to see its posts in their feed.
// IsMember is derived from the viewer on every read, including the read that
// follows a join or leave.
type Community struct {
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	ID          string    `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"community_type"`
	Description string    `json:"description,omitempty" db:"description"`
	MemberCount int       `json:"memberCount" db:"member_count"`
	PostCount   int       `json:"postCount" db:"post_count"`
	IsMember    bool      `json:"isMember" db:"-"`
}

// ListCommunitiesRequest is the input for browsing communities
type ListCommunitiesRequest struct {
	ViewerID   string
	Type       string
	JoinedOnly bool
	Limit      int
	Offset     int
}
