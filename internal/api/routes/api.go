package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"Regatta/internal/api/middleware"
)

// UseAPIMiddleware installs the middleware shared by every /api/v1 route.
// Optional auth runs first so the rate limiter sees the caller's user id;
// RequireAuth on individual routes reuses the session it loaded.
func UseAPIMiddleware(r chi.Router, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, timeout time.Duration) {
	r.Use(authMiddleware.OptionalAuth)
	r.Use(rateLimiter.Middleware)
	r.Use(chiMiddleware.Timeout(timeout))
}
