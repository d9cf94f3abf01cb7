package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	ErasuresTotal     *prometheus.CounterVec
	ErasureVetoes     *prometheus.CounterVec
	RecordsErased     *prometheus.CounterVec
	ErasureDuration   prometheus.Histogram
	ExportsTotal      *prometheus.CounterVec
	ExportWarnings    *prometheus.CounterVec
	AuditWriteFailed  prometheus.Counter
	OperationConflict *prometheus.CounterVec
	EndpointLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		ErasuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datawipe_erasures_total",
			Help: "Total number of erasure requests, labeled by final status",
		}, []string{"status"}),
		ErasureVetoes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datawipe_erasure_vetoes_total",
			Help: "Total number of erasure requests blocked by a hold, labeled by hold name",
		}, []string{"hold"}),
		RecordsErased: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datawipe_records_erased_total",
			Help: "Total number of records removed or anonymized, labeled by domain and category",
		}, []string{"domain", "category"}),
		ErasureDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "datawipe_erasure_duration_seconds",
			Help:    "Wall clock duration of complete erasure runs",
			Buckets: prometheus.DefBuckets,
		}),
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datawipe_exports_total",
			Help: "Total number of export requests, labeled by final status",
		}, []string{"status"}),
		ExportWarnings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datawipe_export_warnings_total",
			Help: "Total number of per-domain export failures degraded to warnings, labeled by domain",
		}, []string{"domain"}),
		AuditWriteFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "datawipe_audit_write_failures_total",
			Help: "Total number of audit entries that could not be committed after a completed erasure",
		}),
		OperationConflict: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "datawipe_operation_conflicts_total",
			Help: "Total number of requests rejected because an operation for the same user was in flight",
		}, []string{"operation"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "datawipe_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

func (m *Metrics) IncrementErasures(status string) {
	m.ErasuresTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementVetoes(hold string) {
	m.ErasureVetoes.WithLabelValues(hold).Inc()
}

func (m *Metrics) AddRecordsErased(domain, category string, n int) {
	m.RecordsErased.WithLabelValues(domain, category).Add(float64(n))
}

func (m *Metrics) ObserveErasureDuration(d time.Duration) {
	m.ErasureDuration.Observe(d.Seconds())
}

func (m *Metrics) IncrementExports(status string) {
	m.ExportsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncrementExportWarnings(domain string) {
	m.ExportWarnings.WithLabelValues(domain).Inc()
}

func (m *Metrics) IncrementAuditWriteFailed() {
	m.AuditWriteFailed.Inc()
}

func (m *Metrics) IncrementOperationConflicts(operation string) {
	m.OperationConflict.WithLabelValues(operation).Inc()
}
