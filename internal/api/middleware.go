package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is the type for request-scoped context keys.
type ContextKey string

// RequestIDKey holds the per-request id in the request context.
const RequestIDKey ContextKey = "requestID"

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id (the client's
// X-Request-ID if sent, a fresh UUID otherwise), echoes it in the response
// and logs the request with its duration.
func (h *HTTPHandler) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		h.logger.InfoContext(ctx, "Request handled",
			slog.String("requestID", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}
