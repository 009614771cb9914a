package middleware

import (
	"context"
	"net/http"
	"strings"

	"brisa/internal/shared/auth"
)

type ContextKey string

const (
	OwnerIDKey ContextKey = "owner_id"
	EmailKey   ContextKey = "email"
)

// Auth validates the request token and puts the owner ID on the
// request context. Tokens are accepted from the access_token cookie
// (browser) or the Authorization header (API clients).
func Auth(jwt *auth.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			if cookie, err := r.Cookie("access_token"); err == nil {
				token = cookie.Value
			} else {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					http.Error(w, "Authentication required", http.StatusUnauthorized)
					return
				}
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}
				token = parts[1]
			}

			claims, err := jwt.Validate(token)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), OwnerIDKey, claims.OwnerID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerID extracts the authenticated owner from the request context.
func OwnerID(r *http.Request) (int64, bool) {
	id, ok := r.Context().Value(OwnerIDKey).(int64)
	return id, ok
}
