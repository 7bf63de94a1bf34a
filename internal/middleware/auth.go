package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/hccc/gameroom-console/internal/pkg/logger"
	"github.com/hccc/gameroom-console/internal/pkg/response"
	"github.com/hccc/gameroom-console/internal/pkg/session"
)

// Auth decodes the bearer token into a session.Session and places it on
// the request context. The token itself is verified by the HCCC API.
func Auth(now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				// Browsers cannot set headers on WebSocket upgrades.
				if token := r.URL.Query().Get("access_token"); token != "" {
					header = "Bearer " + token
				}
			}

			s, err := session.FromHeader(header, now())
			if err != nil {
				switch {
				case errors.Is(err, session.ErrMissingToken):
					response.Unauthorized(w, "Missing authorization header")
				case errors.Is(err, session.ErrExpired):
					response.Unauthorized(w, "Token expired")
				default:
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := session.WithSession(r.Context(), s)
			ctx = logger.With(ctx, "user_id", s.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects sessions whose role is not listed.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			if s == nil {
				response.Unauthorized(w, "Missing session")
				return
			}
			if !s.HasRole(roles...) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
