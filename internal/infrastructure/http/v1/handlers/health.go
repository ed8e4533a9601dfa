package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"retaguarda/internal/infrastructure/metrics"
)

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthConfig holds the probed dependencies. Nil entries are reported as not configured.
type HealthConfig struct {
	App     string
	Version string
	Driver  string

	Database Pinger
	Cache    Pinger

	// PoolStats reports database pool usage; nil for the memory driver
	PoolStats func() metrics.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	cfg HealthConfig
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	checks := map[string]string{
		"database": probe(ctx, h.cfg.Database),
		"cache":    probe(ctx, h.cfg.Cache),
	}

	status, code := "ok", http.StatusOK
	for _, result := range checks {
		if result != "healthy" && result != "not configured" {
			status, code = "error", http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status": status,
		"checks": checks,
	})
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"app":     h.cfg.App,
		"version": h.cfg.Version,
		"storage": h.cfg.Driver,
	}

	if h.cfg.PoolStats != nil {
		stat := h.cfg.PoolStats()
		info["database"] = map[string]any{
			"total_conns":    stat.Total,
			"acquired_conns": stat.Acquired,
			"idle_conns":     stat.Idle,
			"max_conns":      stat.Max,
		}
	}

	c.JSON(http.StatusOK, info)
}
