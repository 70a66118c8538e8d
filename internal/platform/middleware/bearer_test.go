package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwttoken "orgdir/internal/jwt_token"
)

func TestRequireBearer(t *testing.T) {
	tokens := jwttoken.NewService("test-signing-key", "https://issuer.test", "https://audience.test", time.Hour)
	token, err := tokens.Generate(uuid.New(), "Jane", "Doe", "jane@example.com")
	require.NoError(t, err)

	var seen *jwttoken.Claims
	handler := RequireBearer(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClaims(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "jane@example.com", seen.Subject)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestRequireBearerRejectsExpiredToken(t *testing.T) {
	tokens := jwttoken.NewService("test-signing-key", "https://issuer.test", "https://audience.test", -time.Minute)
	token, err := tokens.Generate(uuid.New(), "Jane", "Doe", "jane@example.com")
	require.NoError(t, err)

	handler := RequireBearer(tokens)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
