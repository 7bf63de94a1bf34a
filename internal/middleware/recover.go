package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/hccc/gameroom-console/internal/pkg/logger"
	"github.com/hccc/gameroom-console/internal/pkg/response"
)

// Recover turns a handler panic into a 500 envelope. Aborted handlers
// (http.ErrAbortHandler) are re-panicked so net/http drops the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.FromContext(r.Context()).Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", r.Method).
					Str("route", routePattern(r)).
					Msg("Panic recovered")

				response.InternalError(w)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
