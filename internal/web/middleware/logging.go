// Package middleware provides HTTP middleware for the web server: request
// logging, trusted-proxy client IP resolution, and API key auth for the
// mutating routes.
package middleware

import (
	"net/http"
	"time"

	"github.com/asetfilter/asetfilter/internal/logging"
)

// Logger emits one structured log entry per request: method, path, status,
// duration, client IP and user agent. Entries carry the chi request ID via
// logging.FromContext, so they correlate with any handler logs for the
// same upload.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		logger := logging.FromContext(r.Context())

		// TrustedRealIP has already rewritten RemoteAddr when applicable;
		// X-Real-IP covers setups where a proxy sets it directly.
		ip := r.RemoteAddr
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", duration.Milliseconds(),
			"ip", ip,
			"user_agent", r.UserAgent(),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying ResponseWriter for middleware that
// type-asserts it (http.Flusher and friends).
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
