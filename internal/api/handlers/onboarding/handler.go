package onboarding

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/onboarding"
)

// Handler serves the onboarding completion endpoints
type Handler struct {
	service onboarding.Service
}

// NewHandler creates a new onboarding handler
func NewHandler(service onboarding.Service) *Handler {
	return &Handler{service: service}
}

// HandleComplete runs every onboarding step for the caller and returns the run.
// Step failures are reported in the run; the response is 200 either way.
// POST /api/v1/onboarding
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var in onboarding.Input
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	run, err := h.service.Complete(r.Context(), middleware.GetUserID(r), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, run)
}

// HandleGetRun returns a previous run
// GET /api/v1/onboarding/runs/{runID}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.GetRun(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "runID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, run)
}

// HandleContinue dismisses a failed run without retrying it
// POST /api/v1/onboarding/runs/{runID}/continue
func (h *Handler) HandleContinue(w http.ResponseWriter, r *http.Request) {
	run, err := h.service.ContinueAnyway(r.Context(), middleware.GetUserID(r), chi.URLParam(r, "runID"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, run)
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, onboarding.ErrUnauthorized):
		handlers.WriteAuthRequired(w)

	case errors.Is(err, onboarding.ErrRunNotFound):
		handlers.WriteError(w, http.StatusNotFound, "RunNotFound", "Onboarding run not found")

	case errors.Is(err, onboarding.ErrInvalidTransition):
		handlers.WriteError(w, http.StatusConflict, "InvalidTransition", err.Error())

	case onboarding.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		handlers.WriteInternalError(w, r, err)
	}
}
