// Package main is the entrypoint for the SpendLens API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/cache"
	"github.com/spendlens/spendlens/internal/config"
	"github.com/spendlens/spendlens/internal/handler"
	"github.com/spendlens/spendlens/internal/metrics"
	"github.com/spendlens/spendlens/internal/middleware"
	"github.com/spendlens/spendlens/internal/repository"
	"github.com/spendlens/spendlens/internal/server"
	"github.com/spendlens/spendlens/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	tokenService := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	authService := service.NewAuthService(repo, tokenService, metricsRecorder)
	ledgerService := service.NewLedgerService(repo, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(authService, logger)
	transactionHandler := handler.NewTransactionHandler(ledgerService, logger, cfg.MaxPageSize)

	// Setup router
	r := setupRouter(routerDeps{
		base:         h,
		health:       healthHandler,
		auth:         authHandler,
		transactions: transactionHandler,
		tokens:       tokenService,
		repo:         repo,
		cache:        cacheClient,
		metrics:      metricsRecorder,
		cfg:          cfg,
		logger:       logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter needs.
type routerDeps struct {
	base         *handler.Handler
	health       *handler.HealthHandler
	auth         *handler.AuthHandler
	transactions *handler.TransactionHandler
	tokens       *auth.TokenService
	repo         *repository.Repository
	cache        *cache.Cache
	metrics      metrics.Recorder
	cfg          *config.Config
	logger       *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:  deps.logger,
		Tokens:  deps.tokens,
		Users:   deps.repo,
		Cache:   deps.cache,
		Metrics: deps.metrics,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:       deps.logger,
		Cache:        deps.cache,
		LoginEnabled: deps.cfg.RateLimitLoginEnabled,
		LoginRPS:     deps.cfg.RateLimitLoginRPS,
		LoginBurst:   deps.cfg.RateLimitLoginBurst,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Login is the only unauthenticated API route; it gets per-IP
		// rate limiting instead.
		r.With(middleware.RateLimitLogin(rateLimitCfg)).Post("/login", deps.auth.Login)

		// Everything below requires a bearer token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Get("/users/me", deps.auth.Me)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", deps.transactions.List)
				r.Get("/metrics", deps.transactions.Metrics)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
