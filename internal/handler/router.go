package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/eventhub/eventhub/internal/metrics"
	"github.com/eventhub/eventhub/internal/middleware"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder

	Index  *Handler
	Health *HealthHandler
	Auth   *AuthHandler
	Events *EventHandler

	Tokens    middleware.TokenValidator
	RateLimit middleware.RateLimitConfig
	Security  middleware.SecurityConfig
	CORS      middleware.CORSConfig

	// TrustProxyHeaders lets RealIP replace RemoteAddr from forwarding
	// headers. Leave false unless a proxy in front sets them.
	TrustProxyHeaders bool

	// MetricsHandler serves GET /metrics. Nil leaves the route out.
	MetricsHandler http.Handler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	// Probes and service info (no auth required)
	r.Get("/", cfg.Index.Index)
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	requireAuth := middleware.Auth(middleware.AuthConfig{
		Logger: cfg.Logger,
		Tokens: cfg.Tokens,
	})

	// Account endpoints are the only unauthenticated writes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(cfg.RateLimit))
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
	})

	r.With(requireAuth).Get("/profile", cfg.Auth.Profile)
	r.With(requireAuth, middleware.RequireOrganizer()).Get("/users", cfg.Auth.Users)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", cfg.Events.List)
		r.Get("/{id}", cfg.Events.Get)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/my-registrations", cfg.Events.MyRegistrations)
			r.With(middleware.RequireOrganizer()).Get("/my-events", cfg.Events.MyEvents)
			r.With(middleware.RequireOrganizer()).Post("/", cfg.Events.Create)

			// Ownership is checked by the service.
			r.Put("/{id}", cfg.Events.Update)
			r.Delete("/{id}", cfg.Events.Delete)
			r.Post("/{id}/register", cfg.Events.Register)
			r.Get("/{id}/registrations", cfg.Events.Registrations)
		})
	})

	// 404 and 405 handlers
	r.NotFound(cfg.Index.NotFound)
	r.MethodNotAllowed(cfg.Index.MethodNotAllowed)

	return r
}
