package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"Regatta/internal/api/middleware"
	"Regatta/internal/api/routes"
	"Regatta/internal/auth"
	"Regatta/internal/config"
	"Regatta/internal/core/coach"
	"Regatta/internal/core/communities"
	"Regatta/internal/core/entitlements"
	"Regatta/internal/core/feeds"
	"Regatta/internal/core/onboarding"
	"Regatta/internal/core/posts"
	"Regatta/internal/core/preferences"
	"Regatta/internal/core/venues"
	postgresRepo "Regatta/internal/db/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("Failed to set goose dialect:", err)
	}
	if err := goose.Up(db, cfg.MigrationsDir); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	logger.Info("migrations completed")

	// Auth: asymmetric keys from the JWKS endpoint, plus the legacy shared secret if set
	jwks, err := auth.NewJWKSFetcher(ctx, cfg.JWKSURL(), cfg.SupabaseAnon, cfg.JWKSRefresh)
	if err != nil {
		log.Fatal("Failed to set up JWKS fetcher:", err)
	}
	var hsSecret []byte
	if cfg.JWTSecret != "" {
		hsSecret = []byte(cfg.JWTSecret)
	}
	verifier := auth.NewVerifier(auth.VerifierConfig{
		Issuer:      cfg.AuthIssuer(),
		HS256Secret: hsSecret,
	}, jwks)
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Repositories
	communityRepo := postgresRepo.NewCommunityRepository(db)
	postRepo := postgresRepo.NewPostRepository(db)
	feedRepo := postgresRepo.NewFeedRepository(db, cfg.CursorSecret)
	venueRepo := postgresRepo.NewVenueRepository(db)
	onboardingRepo := postgresRepo.NewOnboardingRepository(db)
	preferencesRepo := postgresRepo.NewPreferencesRepository(db)
	entitlementRepo := postgresRepo.NewEntitlementRepository(db)
	coachRepo := postgresRepo.NewCoachRepository(db)

	// Services
	communityService := communities.NewCommunityService(communityRepo, logger)
	postService := posts.NewPostService(postRepo, communityRepo)
	feedService := feeds.NewFeedService(feedRepo, communityService)
	venueService := venues.NewVenueService(venueRepo)
	onboardingService := onboarding.NewSequencer(onboardingRepo, logger)
	preferencesService := preferences.NewPreferencesService(preferencesRepo)

	var billing entitlements.BillingProvider = entitlements.DisabledBilling{}
	if cfg.BillingAPIURL != "" {
		client, err := entitlements.NewBillingClient(entitlements.BillingClientConfig{
			Logger:  logger,
			BaseURL: cfg.BillingAPIURL,
			APIKey:  cfg.BillingAPIKey,
		})
		if err != nil {
			log.Fatal("Failed to create billing client:", err)
		}
		billing = client
	} else {
		logger.Warn("BILLING_API_URL not set, purchases are disabled")
	}
	entitlementService := entitlements.NewEntitlementService(entitlementRepo, billing, logger)

	// Built-in coach skills work without the proxy
	var completer coach.Completer
	if cfg.CoachEnabled() {
		proxy, err := coach.NewProxyClient(coach.ProxyConfig{
			Logger:        logger,
			BaseURL:       cfg.CoachProxyURL,
			APIKey:        cfg.CoachAPIKey,
			DefaultModel:  cfg.CoachModel,
			AllowedModels: cfg.CoachModels,
			Timeout:       cfg.CoachTimeout,
		})
		if err != nil {
			log.Fatal("Failed to create coach proxy client:", err)
		}
		completer = proxy
	}
	coachService := coach.NewCoachService(completer, coachRepo, logger)

	sweeper := entitlements.NewSweeper(ctx, entitlementService, cfg.EntitlementSweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start entitlement sweeper:", err)
	}
	defer sweeper.Stop()

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	r.Route("/api/v1", func(r chi.Router) {
		routes.UseAPIMiddleware(r, authMiddleware, rateLimiter, cfg.QueryTimeout)

		routes.RegisterCommunityRoutes(r, communityService, authMiddleware)
		routes.RegisterFeedRoutes(r, feedService, authMiddleware)
		routes.RegisterPostRoutes(r, postService, authMiddleware)
		routes.RegisterVoteRoutes(r, postService, authMiddleware)
		routes.RegisterVenueRoutes(r, venueService)
		routes.RegisterUserRoutes(r, onboardingService, preferencesService, entitlementService, authMiddleware)
		routes.RegisterCoachRoutes(r, coachService, authMiddleware)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("regatta api starting", "port", cfg.Port, "coach_proxy", cfg.CoachEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
