package post

import (
	"errors"
	"net/http"

	"Regatta/internal/api/handlers"
	"Regatta/internal/core/posts"
)

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, posts.ErrNotFound):
		handlers.WriteError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case errors.Is(err, posts.ErrCommunityNotFound):
		handlers.WriteError(w, http.StatusNotFound, "CommunityNotFound", "Community not found")

	case errors.Is(err, posts.ErrVenueNotFound):
		handlers.WriteError(w, http.StatusNotFound, "VenueNotFound", "Venue not found")

	case errors.Is(err, posts.ErrNotMember):
		handlers.WriteError(w, http.StatusForbidden, "NotMember", err.Error())

	case errors.Is(err, posts.ErrUnauthorized):
		handlers.WriteAuthRequired(w)

	case posts.IsValidationError(err):
		handlers.WriteError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	default:
		handlers.WriteInternalError(w, r, err)
	}
}
