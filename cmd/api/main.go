// Package main provides the entrypoint for the Greenwave API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/greenwave/greenwave/internal/api"
	"github.com/greenwave/greenwave/internal/api/middleware"
	"github.com/greenwave/greenwave/internal/auth"
	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/database"
	"github.com/greenwave/greenwave/internal/intersection"
	"github.com/greenwave/greenwave/internal/routeopt"
	"github.com/greenwave/greenwave/internal/telemetry"
	"github.com/greenwave/greenwave/internal/traffic"
	"github.com/greenwave/greenwave/internal/traffic/ndw"
	"github.com/greenwave/greenwave/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "greenwave-api"

	// Load .env for local development; production uses real env vars.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Greenwave API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
	})

	// Initialize operator auth service
	operators := parseOperators(os.Getenv("OPERATOR_API_KEYS"))
	if len(operators) == 0 {
		operators = []auth.KeyedOperator{
			{APIKey: "local-dev-key", Operator: auth.Operator{ID: "op_local", Name: "Local Operator", Role: auth.RoleAdmin}},
		}
		log.Warn().Msg("no operator API keys configured - using local dev operator")
	}
	authService := auth.NewService(jwtService, operators)
	log.Info().Int("operators", len(operators)).Msg("auth service initialized")

	// Initialize the congestion predictor
	predictor := congestion.NewPredictor(congestion.PredictorConfig{
		Logger: log,
	})

	// Initialize NDW traffic flow provider (optional live feed)
	var liveFeed routeopt.LiveFeed
	if ndwKey := os.Getenv("NDW_API_KEY"); ndwKey != "" {
		ndwClient := ndw.NewClient(ndw.ClientConfig{
			BaseURL: os.Getenv("NDW_BASE_URL"),
			APIKey:  ndwKey,
		})
		liveFeed = traffic.NewService(traffic.ServiceConfig{
			Provider: ndwClient,
			Logger:   log,
		})
		log.Info().Msg("NDW live traffic feed initialized")
	} else {
		log.Warn().Msg("NDW not configured - optimizing on predicted congestion only")
	}

	// Initialize route optimizer
	optimizer := routeopt.NewService(routeopt.ServiceConfig{
		Predictor: predictor,
		Logger:    log,
		LiveFeed:  liveFeed,
	})
	log.Info().Msg("route optimizer initialized")

	// Initialize clearance event publisher (optional)
	var events intersection.EventPublisher
	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		topicName := os.Getenv("PUBSUB_CLEARANCE_TOPIC")
		if topicName == "" {
			topicName = "clearance-events"
		}
		publisher, pubErr := worker.NewClearanceEventPublisher(ctx, worker.ClearanceEventPublisherConfig{
			ProjectID: projectID,
			TopicName: topicName,
			Logger:    log,
		})
		if pubErr != nil {
			log.Fatal().Err(pubErr).Msg("failed to initialize clearance event publisher")
		}
		defer publisher.Close()
		events = publisher
		log.Info().Str("topic", topicName).Msg("clearance event publisher initialized")
	} else {
		log.Warn().Msg("Pub/Sub not configured - clearance events will not be published")
	}

	// Initialize intersection registry and clearance services
	intersectionRepo := intersection.NewPostgresRepository(pool)
	intersectionService := intersection.NewService(intersection.ServiceConfig{
		Repo:        intersectionRepo,
		Planner:     clearance.NewPlanner(clearance.PlannerConfig{Logger: log}),
		Coordinator: clearance.NewCoordinator(clearance.CoordinatorConfig{Logger: log}),
		Predictor:   predictor,
		Events:      events,
		Logger:      log,
	})
	log.Info().Msg("intersection service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:             Version,
		BuildTime:           BuildTime,
		Logger:              log,
		ServiceName:         serviceName,
		Metrics:             metrics,
		JWTService:          jwtService,
		AuthService:         authService,
		Optimizer:           optimizer,
		Predictor:           predictor,
		IntersectionService: intersectionService,
		Clock:               clock.System(),
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// parseOperators parses OPERATOR_API_KEYS entries in the form
// "apiKey:operatorId:role:name", comma-separated. Malformed entries are
// skipped.
func parseOperators(raw string) []auth.KeyedOperator {
	var operators []auth.KeyedOperator
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 4)
		if len(parts) != 4 || parts[0] == "" || parts[1] == "" {
			continue
		}
		operators = append(operators, auth.KeyedOperator{
			APIKey: parts[0],
			Operator: auth.Operator{
				ID:   parts[1],
				Role: auth.Role(parts[2]),
				Name: parts[3],
			},
		})
	}
	return operators
}
