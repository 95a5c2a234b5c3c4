package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const corsMaxAgeSeconds = 86400

// CORS lets the browser frontend call the API from the given origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", idempotencyKeyHeader, traceIDHeader},
		ExposedHeaders: []string{traceIDHeader, "X-Idempotent-Replayed", "Retry-After"},
		MaxAge:         corsMaxAgeSeconds,
	})
}
