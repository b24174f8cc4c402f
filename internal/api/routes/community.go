package routes

import (
	"Regatta/internal/api/handlers/community"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/communities"

	"github.com/go-chi/chi/v5"
)

// RegisterCommunityRoutes registers community directory and membership endpoints
func RegisterCommunityRoutes(r chi.Router, service communities.Service, authMiddleware *middleware.AuthMiddleware) {
	h := community.NewHandler(service)

	// Public reads; a signed-in viewer also gets isMember
	r.With(authMiddleware.OptionalAuth).Get("/communities", h.HandleList)
	r.With(authMiddleware.OptionalAuth).Get("/communities/{identifier}", h.HandleGet)

	r.With(authMiddleware.RequireAuth).Get("/communities/joined/ids", h.HandleListJoinedIDs)
	r.With(authMiddleware.RequireAuth).Post("/communities/{identifier}/membership", h.HandleJoin)
	r.With(authMiddleware.RequireAuth).Delete("/communities/{identifier}/membership", h.HandleLeave)
}
