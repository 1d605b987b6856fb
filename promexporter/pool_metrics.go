package promexporter

import (
	"sort"
	"sync"

	"github.com/pior/redpool"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	poolConnectionsDesc = prometheus.NewDesc(
		"redpool_pool_connections",
		"Connection pool statistics",
		[]string{"server", "state"}, // total, idle, active, overflow
		nil,
	)
	poolMaxSizeDesc = prometheus.NewDesc(
		"redpool_pool_max_size",
		"Number of connections opened at establishment",
		[]string{"server"},
		nil,
	)
	poolAcquiresDesc = prometheus.NewDesc(
		"redpool_pool_acquires_total",
		"Total connection checkouts",
		[]string{"server"},
		nil,
	)
	poolOverflowsDesc = prometheus.NewDesc(
		"redpool_pool_overflow_acquires_total",
		"Checkouts served by an unpooled connection",
		[]string{"server"},
		nil,
	)
	poolCreatedDesc = prometheus.NewDesc(
		"redpool_pool_connections_created_total",
		"Pooled connections created",
		[]string{"server"},
		nil,
	)
	poolDestroyedDesc = prometheus.NewDesc(
		"redpool_pool_connections_destroyed_total",
		"Pooled connections destroyed",
		[]string{"server"},
		nil,
	)
	commandErrorsDesc = prometheus.NewDesc(
		"redpool_command_errors_total",
		"Failed commands, I/O or server reported",
		[]string{"server"},
		nil,
	)
)

// PoolMetrics exposes the last stats snapshot of each server.
//
// Pools keep their own lifetime counters, so the snapshot values are emitted
// as const metrics on every collection: counters for cumulative values,
// gauges for the current connection counts.
type PoolMetrics struct {
	mu    sync.Mutex
	stats map[string]redpool.PoolStats
}

// NewPoolMetrics creates the pool metrics and registers them
func NewPoolMetrics(registry *prometheus.Registry) *PoolMetrics {
	m := &PoolMetrics{stats: map[string]redpool.PoolStats{}}
	registry.MustRegister(m)
	return m
}

// SetPoolStats stores the stats snapshot of server
func (m *PoolMetrics) SetPoolStats(server string, s redpool.PoolStats) {
	m.mu.Lock()
	m.stats[server] = s
	m.mu.Unlock()
}

// Describe implements prometheus.Collector
func (m *PoolMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolConnectionsDesc
	ch <- poolMaxSizeDesc
	ch <- poolAcquiresDesc
	ch <- poolOverflowsDesc
	ch <- poolCreatedDesc
	ch <- poolDestroyedDesc
	ch <- commandErrorsDesc
}

// Collect implements prometheus.Collector
func (m *PoolMetrics) Collect(ch chan<- prometheus.Metric) {
	m.mu.Lock()
	servers := make([]string, 0, len(m.stats))
	for server := range m.stats {
		servers = append(servers, server)
	}
	snapshot := make(map[string]redpool.PoolStats, len(m.stats))
	for server, s := range m.stats {
		snapshot[server] = s
	}
	m.mu.Unlock()

	sort.Strings(servers)

	for _, server := range servers {
		s := snapshot[server]

		gauge := func(desc *prometheus.Desc, v int32, labels ...string) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(v), append([]string{server}, labels...)...)
		}
		counter := func(desc *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), server)
		}

		gauge(poolConnectionsDesc, s.TotalConns, "total")
		gauge(poolConnectionsDesc, s.IdleConns, "idle")
		gauge(poolConnectionsDesc, s.ActiveConns, "active")
		gauge(poolConnectionsDesc, s.OverflowConns, "overflow")
		gauge(poolMaxSizeDesc, s.MaxSize)

		counter(poolAcquiresDesc, s.AcquireCount)
		counter(poolOverflowsDesc, s.OverflowCount)
		counter(poolCreatedDesc, s.CreatedConns)
		counter(poolDestroyedDesc, s.DestroyedConns)
		counter(commandErrorsDesc, s.CommandErrors)
	}
}
