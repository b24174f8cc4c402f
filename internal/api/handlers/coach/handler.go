package coach

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/coach"
)

// Handler serves the AI race coach
type Handler struct {
	service coach.Service
}

// NewHandler creates a new coach handler
func NewHandler(service coach.Service) *Handler {
	return &Handler{service: service}
}

// HandleAdvise answers a coaching request
// POST /api/v1/coach/advice
func (h *Handler) HandleAdvise(w http.ResponseWriter, r *http.Request) {
	var req coach.AdviceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	req.UserID = middleware.GetUserID(r)

	advice, err := h.service.Advise(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, advice)
}

// HandleListSkills returns the skills answered without the proxy
// GET /api/v1/coach/skills
func (h *Handler) HandleListSkills(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"skills": coach.BuiltinSkills()})
}

// HandleListAnalyses returns stored analyses for one race session
// GET /api/v1/coach/sessions/{sessionID}/analyses
func (h *Handler) HandleListAnalyses(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAnalyses(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{"analyses": list})
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coach.ErrUnauthorized):
		handlers.WriteAuthRequired(w)

	case errors.Is(err, coach.ErrNotFound):
		handlers.WriteError(w, http.StatusNotFound, "AnalysisNotFound", "Analysis not found")

	case errors.Is(err, coach.ErrUnavailable):
		handlers.WriteError(w, http.StatusServiceUnavailable, "CoachUnavailable", "The coach is unavailable right now. Try again shortly.")

	case errors.Is(err, coach.ErrMalformedResponse):
		handlers.WriteError(w, http.StatusBadGateway, "MalformedResponse", "The coach returned an unusable answer")

	case coach.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		handlers.WriteInternalError(w, r, err)
	}
}
