package routes

import (
	"Regatta/internal/api/handlers/feed"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/feeds"

	"github.com/go-chi/chi/v5"
)

// RegisterFeedRoutes registers the paged feed endpoints
func RegisterFeedRoutes(r chi.Router, service feeds.Service, authMiddleware *middleware.AuthMiddleware) {
	h := feed.NewGetFeedHandler(service)

	// Optional auth adds per-viewer vote state
	r.With(authMiddleware.OptionalAuth).Get("/feed", h.HandleGetFeed)

	r.With(authMiddleware.RequireAuth).Get("/feed/joined", h.HandleGetJoinedFeed)
}
