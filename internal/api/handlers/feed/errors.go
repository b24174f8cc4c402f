package feed

import (
	"errors"
	"net/http"

	"Regatta/internal/api/handlers"
	"Regatta/internal/core/feeds"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feeds.ErrInvalidCursor):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidCursor", "Invalid pagination cursor")

	case errors.Is(err, feeds.ErrUnauthorized):
		handlers.WriteAuthRequired(w)

	case feeds.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		handlers.WriteInternalError(w, r, err)
	}
}
