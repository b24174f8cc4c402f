package routes

import (
	"Regatta/internal/api/handlers/coach"
	"Regatta/internal/api/middleware"
	coachcore "Regatta/internal/core/coach"

	"github.com/go-chi/chi/v5"
)

// RegisterCoachRoutes registers the race coach endpoints. Only mounted when the
// coach is enabled.
func RegisterCoachRoutes(r chi.Router, service coachcore.Service, authMiddleware *middleware.AuthMiddleware) {
	h := coach.NewHandler(service)

	r.Get("/coach/skills", h.HandleListSkills)

	r.With(authMiddleware.RequireAuth).Post("/coach/advice", h.HandleAdvise)
	r.With(authMiddleware.RequireAuth).Get("/coach/sessions/{sessionID}/analyses", h.HandleListAnalyses)
}
