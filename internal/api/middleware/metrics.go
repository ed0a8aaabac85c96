package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/obraguard/obraguard/internal/metrics"
)

// metricsWriter wraps http.ResponseWriter to capture status code for metrics.
type metricsWriter struct {
	http.ResponseWriter
	status int
}

func (w *metricsWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// PrometheusMiddleware records HTTP request metrics.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &metricsWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method,
			getRoutePattern(r),
			strconv.Itoa(wrapped.status),
		).Inc()
	})
}

// getRoutePattern extracts the route pattern from chi context.
// Falls back to the request path if no pattern is available.
func getRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}
