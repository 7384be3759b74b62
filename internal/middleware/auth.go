package middleware

import (
	"context"
	"net/http"
	"strings"

	"team-scheduler/internal/auth"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

// UserID pulls the authenticated user id out of the request context.
// Empty means the Auth middleware did not run.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// Auth requires a valid Bearer token and injects the user id into the
// request context. Websocket clients may pass the token as ?token= since
// browsers cannot set headers on the upgrade request.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				raw = r.URL.Query().Get("token")
			}
			if raw == "" {
				http.Error(w, "no token", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
