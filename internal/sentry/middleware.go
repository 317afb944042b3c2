package sentry

import (
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
)

// HTTPMiddleware gives each request its own hub and turns handler panics
// into a JSON 500 after reporting them.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}
		hub.Scope().SetRequest(r)

		ctx := sentry.SetHubOnContext(r.Context(), hub)

		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				hub.RecoverWithContext(ctx, err)
				slog.ErrorContext(ctx, "Panic in HTTP handler", "error", err, "path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
			}
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
