package community

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/communities"
)

// Handler serves community browsing and membership endpoints
type Handler struct {
	service communities.Service
}

// NewHandler creates a new community handler
func NewHandler(service communities.Service) *Handler {
	return &Handler{service: service}
}

// HandleList lists communities
// GET /api/v1/communities?type=fleet&joined=true&limit=50&offset=0
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := communities.ListCommunitiesRequest{
		ViewerID:   middleware.GetUserID(r),
		Type:       q.Get("type"),
		JoinedOnly: q.Get("joined") == "true",
	}

	var err error
	if req.Limit, err = intParam(q.Get("limit")); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer")
		return
	}
	if req.Offset, err = intParam(q.Get("offset")); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "offset must be an integer")
		return
	}

	list, err := h.service.ListCommunities(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"communities": list})
}

// HandleGet returns one community by id or slug
// GET /api/v1/communities/{identifier}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	community, err := h.service.GetCommunity(r.Context(), chi.URLParam(r, "identifier"), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, community)
}

// HandleJoin joins the caller to a community and returns it refetched
// POST /api/v1/communities/{identifier}/membership
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	community, err := h.service.JoinCommunity(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "identifier"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, community)
}

// HandleLeave removes the caller from a community and returns it refetched
// DELETE /api/v1/communities/{identifier}/membership
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	community, err := h.service.LeaveCommunity(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "identifier"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, community)
}

// HandleListJoinedIDs returns the ids of every community the caller joined
// GET /api/v1/communities/joined/ids
func (h *Handler) HandleListJoinedIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListJoinedCommunityIDs(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"communityIds": ids})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
