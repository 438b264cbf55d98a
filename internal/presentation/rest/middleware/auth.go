package middleware

import (
	"net/http"

	"github.com/Heitorcp/customer-churn/pkg/auth"
)

// AuthMiddleware validates JWT tokens on incoming requests.
// Requests to paths listed in skipPaths bypass authentication.
func AuthMiddleware(jwtService *auth.JWTService, skipPaths []string) func(http.Handler) http.Handler {
	skipSet := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skipSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := skipSet[r.URL.Path]; skip {
				next.ServeHTTP(w, r)
				return
			}

			claims, status, msg := authenticate(jwtService, r)
			if claims == nil {
				writeError(w, status, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole admits only callers holding role. It authenticates the request
// itself when no earlier middleware has.
func RequireRole(jwtService *auth.JWTService, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				var (
					status int
					msg    string
				)
				claims, status, msg = authenticate(jwtService, r)
				if claims == nil {
					writeError(w, status, msg)
					return
				}
			}

			if !claims.HasRole(role) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
		})
	}
}

func authenticate(jwtService *auth.JWTService, r *http.Request) (*auth.Claims, int, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, http.StatusUnauthorized, "missing authorization header"
	}
	token, ok := auth.BearerToken(header)
	if !ok {
		return nil, http.StatusUnauthorized, "invalid authorization format"
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		return nil, http.StatusUnauthorized, "invalid token"
	}
	return claims, http.StatusOK, ""
}
