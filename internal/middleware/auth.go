package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"fitbuddy-backend/internal/services"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier validates a bearer token and returns its principal.
type TokenVerifier interface {
	Verify(token string) (*services.Principal, error)
}

// AuthMiddleware creates a middleware gating protected routes on a
// valid bearer token. It rejects before any handler runs and never
// produces success responses itself.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			principal, err := verifier.Verify(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the verified principal from context. Nil means
// the request did not pass the auth gate.
func GetPrincipal(ctx context.Context) *services.Principal {
	principal, ok := ctx.Value(principalKey).(*services.Principal)
	if !ok {
		return nil
	}
	return principal
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"message":"` + message + `"}`))
}

// ValidateWebSocketToken validates a token passed as a query parameter
// on the WebSocket route, where headers are not available.
func ValidateWebSocketToken(token string, verifier TokenVerifier) (*services.Principal, error) {
	if token == "" {
		return nil, fmt.Errorf("token required")
	}
	return verifier.Verify(token)
}
