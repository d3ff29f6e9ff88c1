package middleware

import (
	"context"
	"net/http"

	"github.com/agentiqhub/backend/libs/auth/service"
)

// AdminMiddleware validates the JWT access token and requires the admin flag.
// Non-admin callers receive a 403, unauthenticated callers a 401.
func AdminMiddleware(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "authentication required")
				return
			}

			claims, err := tokenGenerator.ValidateAccessToken(token)
			if err != nil {
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			if !claims.IsAdmin {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"admin privileges required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
