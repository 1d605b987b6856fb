package promexporter

import (
	"net"
	"net/http"
	"sync"

	"github.com/pior/redpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsSource is implemented by *redpool.Pool.
type StatsSource interface {
	Addr() net.Addr
	Stats() redpool.PoolStats
}

// Exporter manages Prometheus metrics export
type Exporter struct {
	registry *prometheus.Registry
	pool     *PoolMetrics

	mu      sync.Mutex
	sources []StatsSource
}

// NewExporter creates a new Prometheus exporter
func NewExporter() *Exporter {
	registry := prometheus.NewRegistry()

	return &Exporter{
		registry: registry,
		pool:     NewPoolMetrics(registry),
	}
}

// PoolMetrics returns the pool metrics collector
func (e *Exporter) PoolMetrics() *PoolMetrics {
	return e.pool
}

// Watch adds a pool whose stats are refreshed on every scrape
func (e *Exporter) Watch(source StatsSource) {
	e.mu.Lock()
	e.sources = append(e.sources, source)
	e.mu.Unlock()
}

// Refresh copies the current stats of every watched pool
func (e *Exporter) Refresh() {
	e.mu.Lock()
	sources := append([]StatsSource(nil), e.sources...)
	e.mu.Unlock()

	for _, s := range sources {
		e.pool.SetPoolStats(s.Addr().String(), s.Stats())
	}
}

// Handler returns an HTTP handler for the /metrics endpoint
func (e *Exporter) Handler() http.Handler {
	metrics := promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.Refresh()
		metrics.ServeHTTP(w, r)
	})
}

// ServeHTTP starts the metrics HTTP server
func (e *Exporter) ServeHTTP(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	return http.ListenAndServe(addr, mux)
}
