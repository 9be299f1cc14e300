// Package main is the entrypoint for the event management API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eventhub/eventhub/internal/activity"
	"github.com/eventhub/eventhub/internal/auth"
	"github.com/eventhub/eventhub/internal/cache"
	"github.com/eventhub/eventhub/internal/config"
	"github.com/eventhub/eventhub/internal/handler"
	"github.com/eventhub/eventhub/internal/metrics"
	"github.com/eventhub/eventhub/internal/middleware"
	"github.com/eventhub/eventhub/internal/server"
	"github.com/eventhub/eventhub/internal/service"
	"github.com/eventhub/eventhub/internal/store"
)

// limiterCleanupInterval is how often idle in-process buckets are swept.
const limiterCleanupInterval = time.Minute

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(registry)

	// Optional Redis
	var cacheClient *cache.Cache
	if cfg.HasRedis() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; using in-process rate limiting, activity stream disabled")
	}

	// Security primitives
	hasher, err := auth.NewPasswordHasher(auth.DefaultPasswordParams)
	if err != nil {
		logger.Error("failed to initialize password hasher", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.JWTIssuer)

	// Rate limiter
	var (
		limiter      middleware.Limiter
		localLimiter *cache.LocalLimiter
	)
	if cacheClient != nil {
		limiter = cacheClient.NewIPLimiter("auth", cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	} else {
		localLimiter = cache.NewLocalLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, limiterCleanupInterval)
		limiter = localLimiter
	}

	// Activity stream
	var (
		publisher activity.Publisher = activity.NewNoop()
		stream    *activity.StreamPublisher
	)
	if cacheClient != nil && cfg.ActivityStreamEnabled {
		stream = activity.NewStreamPublisher(cacheClient.Client(), logger, recorder)
		publisher = stream
		logger.Info("activity stream enabled", "stream", activity.StreamKey)
	}

	// Store and services
	st := store.New()
	authService := service.NewAuthService(st, hasher, tokens, recorder, publisher, logger)
	eventService := service.NewEventService(st, recorder, publisher, logger)

	// Handlers
	var healthHandler *handler.HealthHandler
	if cacheClient != nil {
		healthHandler = handler.NewHealthHandler(cacheClient, st)
	} else {
		// A nil *cache.Cache would be a non-nil HealthChecker.
		healthHandler = handler.NewHealthHandler(nil, st)
	}

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Logger:  logger,
		Metrics: recorder,
		Index:   handler.New(),
		Health:  healthHandler,
		Auth:    handler.NewAuthHandler(authService, logger),
		Events:  handler.NewEventHandler(eventService, logger),
		Tokens:  tokens,
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: limiter,
			Metrics: recorder,
			Enabled: cfg.RateLimitEnabled,
			Scope:   "auth",
		},
		Security:          securityCfg,
		CORS:              corsCfg,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		MetricsHandler:    metrics.Handler(registry),
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}
	if stream != nil {
		srv.OnShutdown("activity", stream.Wait)
	}
	if localLimiter != nil {
		srv.OnShutdown("rate-limiter", func(ctx context.Context) error {
			localLimiter.Stop()
			return nil
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"redis", cfg.HasRedis(),
		"rate_limit", cfg.RateLimitEnabled,
		"trust_proxy_headers", cfg.TrustProxyHeaders,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "eventhub")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
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
