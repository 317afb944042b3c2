package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/chefmate/api/internal/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// statusRecorder captures the status code and body size written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// RequestLogger logs one line per request. Health checks are only logged
// when they fail.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		ctx := r.Context()
		if r.URL.Path == "/health" {
			if rw.status != http.StatusOK {
				slog.ErrorContext(ctx, "Health check failed", "status", rw.status)
			}
			return
		}

		level := slog.LevelInfo
		if rw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"bytes", rw.written,
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(ctx),
			logger.WithTraceContext(ctx),
		)
	})
}
