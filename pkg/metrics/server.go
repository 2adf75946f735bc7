package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles every collector the service exposes.
type Registry struct {
	Prometheus *prometheus.Registry
	HTTP       *HTTPMetrics
	DB         *DBMetrics
	External   *ExternalMetrics
}

// NewRegistry builds a registry with go runtime and process collectors plus the
// service's own metric families.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{
		Prometheus: reg,
		HTTP:       NewHTTPMetrics(reg),
		DB:         NewDBMetrics(reg),
		External:   NewExternalMetrics(reg),
	}
}

// Handler serves the registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Prometheus, promhttp.HandlerOpts{})
}

// Serve runs the metrics side-channel server on its own port until ctx is done.
func (r *Registry) Serve(ctx context.Context, port string, logg *logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if logg != nil {
		logg.Info(logg.WithField(ctx, "metrics_port", port), "metrics server listening")
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
