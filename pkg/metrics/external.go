package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExternalMetrics records outbound calls labeled by service and outcome.
type ExternalMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewExternalMetrics registers the external call metrics on the provided registerer.
func NewExternalMetrics(reg prometheus.Registerer) *ExternalMetrics {
	if reg == nil {
		return &ExternalMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "external_requests_total",
		Help: "Total calls to external services.",
	}, []string{"service", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "external_request_duration_seconds",
		Help:    "External call latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "status"})
	reg.MustRegister(requests, latency)
	return &ExternalMetrics{requests: requests, latency: latency}
}

// Track wraps an outbound call with timing and a success/error counter.
func (e *ExternalMetrics) Track(service string, fn func() error) error {
	if e == nil || e.requests == nil {
		return fn()
	}
	start := time.Now()
	err := fn()
	status := "success"
	if err != nil {
		status = "error"
	}
	e.latency.WithLabelValues(normalizeLabel(service), status).Observe(time.Since(start).Seconds())
	e.requests.WithLabelValues(normalizeLabel(service), status).Inc()
	return err
}
