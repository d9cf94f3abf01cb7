package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"datawipe/internal/platform/metrics"
)

// Latency records per-endpoint request duration. The label is the chi route
// pattern, not the raw path, so user ids never become label values.
func Latency(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			endpoint := chi.RouteContext(r.Context()).RoutePattern()
			if endpoint == "" {
				endpoint = "unmatched"
			}
			m.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		})
	}
}
