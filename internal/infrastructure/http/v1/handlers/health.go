// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contalink/internal/infrastructure/storage/postgres"
)

// Version is reported by the info endpoint.
var Version = "0.1.0"

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks   map[string]Pinger
	backends *postgres.BackendPools // nil unless records run on postgres
	timeout  time.Duration
}

// NewHealthHandler creates a health handler. checks are probed by Ready.
func NewHealthHandler(checks map[string]Pinger, backends *postgres.BackendPools) *HealthHandler {
	return &HealthHandler{
		checks:   checks,
		backends: backends,
		timeout:  3 * time.Second,
	}
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
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			results[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "healthy"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"app":     "contalink",
		"version": Version,
	}
	if h.backends != nil {
		stats := h.backends.Stats()
		total := 0
		for _, s := range stats {
			total += s.TotalConns
		}
		info["backends"] = gin.H{
			"active_pools": len(stats),
			"total_conns":  total,
			"pools":        stats,
		}
	}
	c.JSON(http.StatusOK, info)
}
