package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DBMetrics records query counts and latency labeled by operation and table.
type DBMetrics struct {
	queries *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewDBMetrics registers the database metrics on the provided registerer.
func NewDBMetrics(reg prometheus.Registerer) *DBMetrics {
	if reg == nil {
		return &DBMetrics{}
	}
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "db_queries_total",
		Help: "Total database queries executed.",
	}, []string{"operation", "table"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Database query latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
	reg.MustRegister(queries, latency)
	return &DBMetrics{queries: queries, latency: latency}
}

// Track wraps a query call site with timing and a counter increment. The query
// is always counted, success or not; callers keep their own error handling.
func (d *DBMetrics) Track(operation, table string, fn func() error) error {
	if d == nil || d.queries == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	d.latency.WithLabelValues(operation, normalizeLabel(table)).Observe(time.Since(start).Seconds())
	d.queries.WithLabelValues(operation, normalizeLabel(table)).Inc()
	return err
}
