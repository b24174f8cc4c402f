package preferences

import (
	"errors"
	"net/http"

	"Regatta/internal/api/handlers"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/preferences"
)

// Handler serves the caller's display preferences
type Handler struct {
	service preferences.Service
}

// NewHandler creates a new preferences handler
func NewHandler(service preferences.Service) *Handler {
	return &Handler{service: service}
}

// UnitSystemInput is the body of a unit-system update
type UnitSystemInput struct {
	UnitSystem string `json:"unitSystem"`
}

// HandleGet returns the caller's preferences, defaults included
// GET /api/v1/preferences
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.service.GetPreferences(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, prefs)
}

// HandleSetUnitSystem stores the caller's unit system
// PUT /api/v1/preferences/unit-system
func (h *Handler) HandleSetUnitSystem(w http.ResponseWriter, r *http.Request) {
	var in UnitSystemInput
	if err := handlers.DecodeJSON(r, &in); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	prefs, err := h.service.SetUnitSystem(r.Context(), middleware.GetUserID(r), in.UnitSystem)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, prefs)
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, preferences.ErrUnauthorized):
		handlers.WriteAuthRequired(w)
	case preferences.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	default:
		handlers.WriteInternalError(w, r, err)
	}
}
