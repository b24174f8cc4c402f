package venue

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Regatta/internal/api/handlers"
	"Regatta/internal/core/venues"
)

// Handler serves the venue directory and circuit planner
type Handler struct {
	service venues.Service
}

// NewHandler creates a new venue handler
func NewHandler(service venues.Service) *Handler {
	return &Handler{service: service}
}

// HandleList lists venues, nearest first when a point is given
// GET /api/v1/venues?lat=-33.85&lon=151.25&radiusNm=50&country=AU&limit=25
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := venues.ListVenuesRequest{Country: q.Get("country")}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr != "" || lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "lat and lon must both be numbers")
			return
		}
		req.Near = &venues.Point{Lat: lat, Lon: lon}
	}

	if s := q.Get("radiusNm"); s != "" {
		radius, err := strconv.ParseFloat(s, 64)
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "radiusNm must be a number")
			return
		}
		req.RadiusNM = radius
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	list, err := h.service.ListVenues(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"venues": list})
}

// HandleGet returns one venue
// GET /api/v1/venues/{venueID}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	venue, err := h.service.GetVenue(r.Context(), chi.URLParam(r, "venueID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, venue)
}

// HandlePlanCircuit prices a regatta circuit through the given venues
// POST /api/v1/venues/circuit
func (h *Handler) HandlePlanCircuit(w http.ResponseWriter, r *http.Request) {
	var req venues.PlanCircuitRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	plan, err := h.service.PlanCircuit(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, plan)
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case venues.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "VenueNotFound", "Venue not found")
	case venues.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		handlers.WriteInternalError(w, r, err)
	}
}
