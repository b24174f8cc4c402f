package routes

import (
	"Regatta/internal/api/handlers/post"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterPostRoutes registers post, comment and vote endpoints
func RegisterPostRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware) {
	h := post.NewHandler(service)

	r.With(authMiddleware.OptionalAuth).Get("/posts/{postID}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Post("/posts", h.HandleCreate)
		r.Post("/posts/{postID}/comments", h.HandleAddComment)
	})
}
