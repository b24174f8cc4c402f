package feeds

import (
	"Regatta/internal/core/posts"
)

// Sort modes. Ranking is computed by the repository; the service never reorders.
const (
	SortHot    = "hot"
	SortNew    = "new"
	SortRising = "rising"
	SortTop    = "top"
)

const (
	defaultLimit = 15
	maxLimit     = 50
	// maxCommunities bounds the ANY($n) list handed to the database
	maxCommunities = 200
)

var validSorts = map[string]bool{
	SortHot:    true,
	SortNew:    true,
	SortRising: true,
	SortTop:    true,
}

var validTimeframes = map[string]bool{
	"hour": true, "day": true, "week": true,
	"month": true, "year": true, "all": true,
}

// FeedRequest is the input for one page of a feed.
// VenueID selects the venue-scoped source; otherwise CommunityIDs selects the
// community-scoped source. The two are never combined.
type FeedRequest struct {
	Cursor       *string  `json:"cursor,omitempty"`
	CommunityIDs []string `json:"communityIds"`
	VenueID      string   `json:"venueId,omitempty"`
	ViewerID     string   `json:"-"`
	Sort         string   `json:"sort"`
	Timeframe    string   `json:"timeframe,omitempty"`
	PostType     string   `json:"postType,omitempty"`
	Limit        int      `json:"limit"`
}

// IsVenueScoped reports whether the request reads the venue-scoped source
func (r FeedRequest) IsVenueScoped() bool {
	return r.VenueID != ""
}

// FeedResponse is one page of a feed. Cursor is opaque and only valid for the
// sort that produced it.
type FeedResponse struct {
	Cursor      *string           `json:"cursor,omitempty"`
	Feed        []*posts.FeedPost `json:"feed"`
	HasNextPage bool              `json:"hasNextPage"`
}

func emptyResponse() *FeedResponse {
	return &FeedResponse{Feed: []*posts.FeedPost{}}
}
