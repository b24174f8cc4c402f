package community

import (
	"errors"
	"net/http"

	"Regatta/internal/api/handlers"
	"Regatta/internal/core/communities"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case communities.IsNotFound(err):
		handlers.WriteError(w, http.StatusNotFound, "CommunityNotFound", "Community not found")

	case errors.Is(err, communities.ErrUnauthorized):
		handlers.WriteAuthRequired(w)

	case communities.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		handlers.WriteInternalError(w, r, err)
	}
}
