package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ghtrigger/pkg/utils/logging"
)

// LoggingMiddleware puts the base logger into each request context and logs
// the request once it has been answered. Bodies are never logged.
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	base := logging.From(ctx)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())
			logger := base.With("request_id", reqID)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
					"remote_addr", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))
		})
	}
}

// writeJSON writes body with status
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response. Only msg is exposed to the caller.
func writeError(ctx context.Context, w http.ResponseWriter, msg string, status int) {
	writeJSON(ctx, w, status, map[string]string{
		"error": msg,
	})
}
