// Package httptransport is the thin HTTP layer. Handlers decode, delegate to
// domain services, and encode; no business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datawipe/internal/platform/metrics"
	"datawipe/internal/platform/middleware"
)

// Health is what the health endpoint asks its dependencies.
type Health interface {
	Healthy() bool
}

// RouterConfig carries everything the router mounts.
type RouterConfig struct {
	Erasure   ErasureService
	Export    ExportService
	Audit     AuditService
	Validator middleware.TokenValidator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Health    Health
}

// NewRouter wires all endpoints. Every data endpoint sits behind
// authentication; health and metrics do not.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Latency(cfg.Metrics))

	r.Get("/health", handleHealth(cfg.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))

		NewErasureHandler(cfg.Erasure, cfg.Logger).Register(r)
		NewExportHandler(cfg.Export, cfg.Logger).Register(r)
		NewAuditHandler(cfg.Audit, cfg.Logger).Register(r)
	})

	return r
}

func handleHealth(h Health) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if h != nil && !h.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
