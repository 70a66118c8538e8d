package middleware

import (
	"crypto/subtle"
	"net/http"
)

const apiKeyHeader = "X-API-KEY"

// RequireAPIKey rejects requests without the shared API key: a missing
// header is 401, a wrong key 403. The comparison is constant-time.
func RequireAPIKey(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(apiKeyHeader)
			if supplied == "" {
				http.Error(w, "API key was not provided", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(expected)) != 1 {
				http.Error(w, "unauthorized client", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
