package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rwalling/tasklog/internal/database"
	logpkg "github.com/rwalling/tasklog/internal/logger"
	"github.com/rwalling/tasklog/internal/middleware"
)

// HealthHandler serves liveness and dependency checks
type HealthHandler struct {
	db          *database.DB
	rateLimiter *middleware.RedisRateLimiter
	logger      *zap.Logger
}

// NewHealthHandler creates a new health handler. rateLimiter may be nil when
// Redis is not configured.
func NewHealthHandler(db *database.DB, rateLimiter *middleware.RedisRateLimiter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, rateLimiter: rateLimiter, logger: logger}
}

// Healthz reports service health. The default mode answers without touching
// dependencies; ?mode=extended pings the database and Redis.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, status)
		return
	}

	healthy := true
	checks := map[string]string{}

	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error("health_check_database_failed", zap.String("error", logpkg.SanitizeError(err)))
		checks["database"] = "unavailable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.rateLimiter != nil {
		if err := h.rateLimiter.Ping(r.Context()); err != nil {
			h.logger.Error("health_check_redis_failed", zap.String("error", logpkg.SanitizeError(err)))
			checks["redis"] = "unavailable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status["checks"] = checks
	if !healthy {
		status["status"] = "degraded"
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// Version reports build information
func Version(version, commit string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"version": version,
			"commit":  commit,
		})
	}
}
