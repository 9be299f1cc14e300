package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/eventhub/eventhub/internal/store"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// StatsProvider reports the size of the in-memory collections.
type StatsProvider interface {
	Stats() store.Stats
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	cache HealthChecker
	store StatsProvider
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for cache when Redis is not configured.
func NewHealthHandler(cache HealthChecker, st StatsProvider) *HealthHandler {
	return &HealthHandler{
		cache: cache,
		store: st,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Store  *store.Stats      `json:"store,omitempty"`
}

// Healthz is a liveness probe. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is a readiness probe. It returns 200 only if every configured
// dependency answers.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["redis"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "not configured"
	}

	response := HealthResponse{Status: "ok", Checks: checks}
	if h.store != nil {
		stats := h.store.Stats()
		response.Store = &stats
		checks["store"] = "ok"
	}

	statusCode := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}
