package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CheckFunc probes one dependency. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// HealthHandler serves liveness and readiness endpoints. Dependencies
// register named checks; readiness fails when any check fails.
type HealthHandler struct {
	logger *zap.Logger
	checks map[string]CheckFunc
	start  time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{
		logger: logger.With(zap.String("component", "health_handler")),
		checks: make(map[string]CheckFunc),
		start:  time.Now(),
	}
}

// RegisterCheck adds a named dependency check. Not safe for concurrent use
// with request handling; register everything before the server starts.
func (h *HealthHandler) RegisterCheck(name string, check CheckFunc) {
	h.checks[name] = check
}

type healthStatus struct {
	Status string            `json:"status"`
	Uptime string            `json:"uptime"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleHealthz handles GET /healthz: process liveness only.
func (h *HealthHandler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleHealth handles GET /health: liveness plus per-dependency detail.
// The response is 200 even when a dependency is down; readiness is the
// endpoint that gates traffic.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.runChecks(r.Context())
	WriteJSON(w, http.StatusOK, status)
}

// HandleReady handles GET /ready: 503 until every dependency is healthy.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	status := h.runChecks(r.Context())
	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	WriteJSON(w, code, status)
}

func (h *HealthHandler) runChecks(ctx context.Context) healthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := healthStatus{
		Status: "ok",
		Uptime: time.Since(h.start).Round(time.Second).String(),
		Checks: make(map[string]string, len(h.checks)),
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status.Status = "degraded"
			status.Checks[name] = err.Error()
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
		} else {
			status.Checks[name] = "ok"
		}
	}
	return status
}

// HandleVersion returns a handler for GET /version.
func (h *HealthHandler) HandleVersion(version, buildTime, gitCommit string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"version":    version,
			"build_time": buildTime,
			"git_commit": gitCommit,
		})
	}
}
