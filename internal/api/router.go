// Package api provides the HTTP API for Greenwave.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/internal/api/handler"
	"github.com/greenwave/greenwave/internal/api/middleware"
	"github.com/greenwave/greenwave/internal/auth"
	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/intersection"
	"github.com/greenwave/greenwave/internal/routeopt"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version             string
	BuildTime           string
	Logger              zerolog.Logger
	ServiceName         string
	Metrics             *middleware.Metrics
	JWTService          *auth.JWTService
	AuthService         *auth.Service
	Optimizer           *routeopt.Service
	Predictor           *congestion.Predictor
	IntersectionService *intersection.Service
	Clock               clock.Clock
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "greenwave-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Optimizer)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	routeHandler := handler.NewRouteHandler(cfg.Optimizer, cfg.Predictor, cfg.Clock)
	clearanceHandler := handler.NewClearanceHandler(cfg.IntersectionService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)
	controlOnly := middleware.RequireRole(auth.RoleTrafficControl, auth.RoleAdmin)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)                 // 10 req/min
	expensiveRateLimit := middleware.RateLimitByOperator(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByOperator(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/token", authHandler.Token)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Route optimization - expensive compute, strict rate limiting
		r.With(authMiddleware, expensiveRateLimit).Post("/routes:optimize", routeHandler.OptimizeRoutes)

		// Congestion forecast - standard rate limiting
		r.With(authMiddleware, standardRateLimit).Get("/congestion/forecast", routeHandler.CongestionForecast)

		// Intersection registry (authenticated) - operator-based rate limiting
		r.Route("/intersections", func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(standardRateLimit).Get("/", clearanceHandler.ListIntersections)
			r.With(adminOnly, standardRateLimit).Post("/", clearanceHandler.CreateIntersection)
			r.Route("/{intersectionId}", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", clearanceHandler.GetIntersection)
				r.With(adminOnly, standardRateLimit).Delete("/", clearanceHandler.DeleteIntersection)
				r.With(controlOnly, expensiveRateLimit).Post("/clearance:plan", clearanceHandler.PlanClearance)
			})
		})

		// Corridor green-wave coordination (traffic control and admin only)
		r.With(authMiddleware, controlOnly, expensiveRateLimit).Post("/corridors:coordinate", clearanceHandler.CoordinateCorridor)
	})

	return r
}
