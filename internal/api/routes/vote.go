package routes

import (
	"Regatta/internal/api/handlers/post"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/posts"

	"github.com/go-chi/chi/v5"
)

// RegisterVoteRoutes registers the upvote endpoints. Both are idempotent.
func RegisterVoteRoutes(r chi.Router, service posts.Service, authMiddleware *middleware.AuthMiddleware) {
	h := post.NewHandler(service)

	r.With(authMiddleware.RequireAuth).Post("/posts/{postID}/vote", h.HandleVote)
	r.With(authMiddleware.RequireAuth).Delete("/posts/{postID}/vote", h.HandleUnvote)
}
