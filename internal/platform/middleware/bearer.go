package middleware

import (
	"context"
	"net/http"
	"strings"

	jwttoken "orgdir/internal/jwt_token"
)

const bearerPrefix = "Bearer "

type contextKeyClaims struct{}

// GetClaims retrieves the token claims set by RequireBearer, or nil.
func GetClaims(ctx context.Context) *jwttoken.Claims {
	claims, _ := ctx.Value(contextKeyClaims{}).(*jwttoken.Claims)
	return claims
}

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	Validate(tokenString string) (*jwttoken.Claims, error)
}

// RequireBearer rejects requests without a valid access token in the
// Authorization header and puts the verified claims on the context.
func RequireBearer(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				http.Error(w, "access token was not provided", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Validate(strings.TrimPrefix(header, bearerPrefix))
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), contextKeyClaims{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
