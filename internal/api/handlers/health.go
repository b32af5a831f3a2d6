package handlers

import (
	"context"
	"net/http"
	"time"

	"shadowcleaner/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	version   string
	backends  map[string]Pinger
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. Nil backends are reported
// as not configured.
func NewHealthHandler(version string, backends map[string]Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		version:   version,
		backends:  backends,
		logger:    log.WithComponent("health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - pings every configured backend
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.backends))
	status := http.StatusOK
	overallStatus := "ready"

	for name, b := range h.backends {
		if b == nil {
			checks[name] = "not configured"
			continue
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		err := b.Ping(ctx)
		cancel()
		if err != nil {
			h.logger.Warn().Err(err).Str("backend", name).Msg("readiness check failed")
			checks[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			overallStatus = "not ready"
			continue
		}
		checks[name] = "healthy"
	}

	respondJSON(w, status, HealthResponse{
		Status:    overallStatus,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
