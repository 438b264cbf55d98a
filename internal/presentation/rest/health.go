package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Heitorcp/customer-churn/internal/application/usecase"
)

// HealthHandler provides the HTTP health endpoints.
type HealthHandler struct {
	checkHealth *usecase.CheckHealth
	logger      *slog.Logger
	startTime   time.Time
	timeout     time.Duration
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(checkHealth *usecase.CheckHealth, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checkHealth: checkHealth,
		logger:      logger,
		startTime:   time.Now(),
		timeout:     2 * time.Second,
	}
}

// LivenessResponse is the JSON response for liveness checks.
type LivenessResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Error   string `json:"error,omitempty"`
}

const serviceName = "churn-service"

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Health runs the probe prediction. An unhealthy service answers 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := h.checkHealth.Execute(r.Context())

	status := http.StatusOK
	if !resp.Healthy() {
		status = http.StatusServiceUnavailable
		h.logger.WarnContext(r.Context(), "health check failed", "error", resp.Error)
	}
	writeJSON(w, status, resp)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Readyz handles readiness probe requests.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.checkHealth.Ready(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status:  "not ready",
			Service: serviceName,
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Service: serviceName})
}
