package feed

import (
	"net/http"
	"strconv"
	"strings"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/feeds"
)

// GetFeedHandler serves community and venue feeds
type GetFeedHandler struct {
	service feeds.Service
}

// NewGetFeedHandler creates a new feed handler
func NewGetFeedHandler(service feeds.Service) *GetFeedHandler {
	return &GetFeedHandler{service: service}
}

// HandleGetFeed returns one page of posts from a venue or a set of communities
// GET /api/v1/feed?communityIds=a,b&venueId=...&sort=hot&timeframe=day&postType=tip&limit=15&cursor=...
func (h *GetFeedHandler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	req, err := parseFeedRequest(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	resp, err := h.service.GetFeed(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

// HandleGetJoinedFeed returns one page over every community the caller has joined
// GET /api/v1/feed/joined?sort=new&limit=15&cursor=...
func (h *GetFeedHandler) HandleGetJoinedFeed(w http.ResponseWriter, r *http.Request) {
	req, err := parseFeedRequest(r)
	if err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	resp, err := h.service.GetJoinedFeed(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, resp)
}

func parseFeedRequest(r *http.Request) (feeds.FeedRequest, error) {
	q := r.URL.Query()

	req := feeds.FeedRequest{
		VenueID:   strings.TrimSpace(q.Get("venueId")),
		ViewerID:  middleware.GetUserID(r),
		Sort:      q.Get("sort"),
		Timeframe: q.Get("timeframe"),
		PostType:  q.Get("postType"),
	}

	for _, raw := range q["communityIds"] {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.CommunityIDs = append(req.CommunityIDs, id)
			}
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return req, feeds.NewValidationError("limit", "limit must be an integer")
		}
		req.Limit = limit
	}

	if cursor := q.Get("cursor"); cursor != "" {
		req.Cursor = &cursor
	}

	return req, nil
}
