package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/anthonyhasrouny/portfolio/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Pinger checks a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	RateLimitStore string `json:"rate_limit_store"`
	EmailProvider  string `json:"email_provider"`
	Version        string `json:"version"`
}

// HealthHandler reports liveness and dependency status.
type HealthHandler struct {
	store    string
	redis    Pinger
	provider string
	version  string
	logger   logger.Logger
}

// NewHealthHandler creates a new health handler. redis is nil for the memory store.
func NewHealthHandler(store string, redis Pinger, provider, version string, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:    store,
		redis:    redis,
		provider: provider,
		version:  version,
		logger:   log,
	}
}

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	resp := HealthResponse{
		Status:         "ok",
		RateLimitStore: h.store,
		EmailProvider:  h.provider,
		Version:        h.version,
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := h.redis.Ping(ctx); err != nil {
			h.logger.Warn("health check: redis unavailable", "error", err)
			// Quote requests still go through (the limiter fails open).
			resp.Status = "degraded"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}

	return c.JSON(http.StatusOK, resp)
}
