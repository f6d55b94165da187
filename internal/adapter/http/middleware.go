package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"brigade/internal/adapter/logger"
)

type requestIDKey struct{}

// RequestIDFrom returns the id LoggingMiddleware stamped on the request, or
// "" for requests that never passed through it.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingMiddleware assigns each request an id, threads it through the
// request context for handlers to log with, and records timing.
func LoggingMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := fmt.Sprintf("req-%d", start.UnixNano())
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

			logger.Debug("http_request", fmt.Sprintf("%s %s", r.Method, r.URL.Path), requestID, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			next.ServeHTTP(w, r)

			duration := time.Since(start)
			logger.Debug("http_response", "Request completed", requestID, map[string]interface{}{
				"duration_ms": duration.Milliseconds(),
			})
		})
	}
}

func RecoveryMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered", "Panic recovered", RequestIDFrom(r.Context()), nil, fmt.Errorf("%v", err))
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
