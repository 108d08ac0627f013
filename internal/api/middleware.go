package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/shelfwatch/shelfwatch-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyUsername contextKey = "username"

// requireUser is middleware that resolves the caller from the X-Username
// header and attaches it to the request context. Identity arrives already
// resolved by the deployment's front door; this server only scopes data by
// it.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.Header.Get("X-Username"))
		if username == "" {
			response.Unauthorized(w, "Missing X-Username header", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUsername, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getUsername extracts the resolved username from request context.
// Returns empty string if the middleware did not run.
func getUsername(ctx context.Context) string {
	if username, ok := ctx.Value(contextKeyUsername).(string); ok {
		return username
	}
	return ""
}
