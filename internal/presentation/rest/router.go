package rest

import (
	"log/slog"
	"net/http"

	"github.com/rs/cors"

	"github.com/Heitorcp/customer-churn/internal/presentation/rest/middleware"
	"github.com/Heitorcp/customer-churn/pkg/auth"
)

// PublicPaths never require a token.
var PublicPaths = []string{"/", "/health", "/healthz", "/readyz", "/auth/login", "/metrics"}

// RouterConfig assembles the HTTP surface.
type RouterConfig struct {
	Handler     *Handler
	Health      *HealthHandler
	Metrics     http.Handler
	JWT         *auth.JWTService
	Logger      *slog.Logger
	CORSOrigins []string
	RateLimit   int
	AuthEnabled bool
}

// NewRouter builds the routed, middleware-wrapped HTTP handler.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	cfg.Health.RegisterRoutes(mux)
	cfg.Handler.RegisterRoutes(mux, middleware.RequireRole(cfg.JWT, auth.RoleAdmin))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics)
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.LoggingMiddleware(cfg.Logger),
		cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}).Handler,
	}
	if cfg.RateLimit > 0 {
		middlewares = append(middlewares, middleware.PerClientRateLimitMiddleware(middleware.NewPerClientRateLimiter(cfg.RateLimit)))
	}
	if cfg.AuthEnabled {
		middlewares = append(middlewares, middleware.AuthMiddleware(cfg.JWT, PublicPaths))
	}

	return middleware.Chain(mux, middlewares...)
}
