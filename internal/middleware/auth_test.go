package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fitbuddy-backend/internal/services"
	"fitbuddy-backend/internal/storeerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	principal *services.Principal
}

func (v stubVerifier) Verify(token string) (*services.Principal, error) {
	if token == "good-token" {
		return v.principal, nil
	}
	return nil, storeerr.ErrUnauthorized
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	verifier := stubVerifier{principal: &services.Principal{UserID: "u1", Username: "ann"}}

	var seen *services.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := AuthMiddleware(verifier)(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"malformed", "Bearer", http.StatusUnauthorized},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, "u1", seen.UserID)
				assert.Equal(t, "ann", seen.Username)
			} else {
				// The gate rejects before any handler runs.
				assert.Nil(t, seen)
				assert.Contains(t, rec.Body.String(), `"message"`)
			}
		})
	}
}

func TestValidateWebSocketToken(t *testing.T) {
	t.Parallel()

	verifier := stubVerifier{principal: &services.Principal{UserID: "u1"}}

	_, err := ValidateWebSocketToken("", verifier)
	assert.Error(t, err)

	_, err = ValidateWebSocketToken("bad-token", verifier)
	assert.Error(t, err)

	principal, err := ValidateWebSocketToken("good-token", verifier)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.UserID)
}
