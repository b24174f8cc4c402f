package routes

import (
	"Regatta/internal/api/handlers/venue"
	"Regatta/internal/core/venues"

	"github.com/go-chi/chi/v5"
)

// RegisterVenueRoutes registers the public venue directory and circuit planner
func RegisterVenueRoutes(r chi.Router, service venues.Service) {
	h := venue.NewHandler(service)

	r.Get("/venues", h.HandleList)
	r.Post("/venues/circuit", h.HandlePlanCircuit)
	r.Get("/venues/{venueID}", h.HandleGet)
}
