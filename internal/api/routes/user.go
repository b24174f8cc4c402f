package routes

import (
	"Regatta/internal/api/handlers/entitlement"
	"Regatta/internal/api/handlers/onboarding"
	"Regatta/internal/api/handlers/preferences"
	"Regatta/internal/api/middleware"
	"Regatta/internal/core/entitlements"
	onboardingcore "Regatta/internal/core/onboarding"
	preferencescore "Regatta/internal/core/preferences"

	"github.com/go-chi/chi/v5"
)

// RegisterUserRoutes registers the per-user account endpoints: onboarding,
// display preferences and the entitlement store
func RegisterUserRoutes(
	r chi.Router,
	onboardingService onboardingcore.Service,
	preferencesService preferencescore.Service,
	entitlementService entitlements.Service,
	authMiddleware *middleware.AuthMiddleware,
) {
	onboardingHandler := onboarding.NewHandler(onboardingService)
	preferencesHandler := preferences.NewHandler(preferencesService)
	entitlementHandler := entitlement.NewHandler(entitlementService)

	// Product catalog is public so the paywall renders before sign-in
	r.Get("/products", entitlementHandler.HandleListProducts)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Post("/onboarding", onboardingHandler.HandleComplete)
		r.Get("/onboarding/runs/{runID}", onboardingHandler.HandleGetRun)
		r.Post("/onboarding/runs/{runID}/continue", onboardingHandler.HandleContinue)

		r.Get("/preferences", preferencesHandler.HandleGet)
		r.Put("/preferences/unit-system", preferencesHandler.HandleSetUnitSystem)

		r.Get("/entitlement", entitlementHandler.HandleGet)
		r.Post("/entitlement/purchase", entitlementHandler.HandlePurchase)
		r.Post("/entitlement/restore", entitlementHandler.HandleRestore)
	})
}
