package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// CORSConfig lists the storefront and back-office origins allowed to call
// the console with credentials.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// corsExposed are the response headers browser code reads: the request id
// for support tickets and the cache marker on public reads.
var corsExposed = []string{RequestIDHeader, "X-Cache"}

// CORSHandler answers preflights for the console API. Token values are set
// with PUT and showcase visibility with PATCH, so both are allowed.
func CORSHandler(cfg CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   corsExposed,
		AllowCredentials: true,
		MaxAge:           int(cfg.MaxAge / time.Second),
	})
}
