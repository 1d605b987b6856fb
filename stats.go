package redpool

import (
	"sync/atomic"
)

// PoolStats contains statistics about a connection pool.
//
// For Prometheus integration, expose these as:
//   - Gauges: TotalConns, IdleConns, ActiveConns, OverflowConns, MaxSize
//   - Counters: AcquireCount, OverflowCount, CreatedConns, DestroyedConns, CommandErrors
type PoolStats struct {
	// Lifetime counters
	AcquireCount   uint64 // Total checkouts
	OverflowCount  uint64 // Checkouts served by an unpooled connection
	CreatedConns   uint64 // Pooled connections opened
	DestroyedConns uint64 // Pooled connections closed
	CommandErrors  uint64 // Commands that failed (I/O or server error)

	// Current state gauges
	TotalConns    int32 // Pooled connections (idle + leased)
	IdleConns     int32 // Pooled connections available
	ActiveConns   int32 // Pooled connections currently leased
	OverflowConns int32 // Unpooled connections currently leased
	MaxSize       int32 // Size the pool was established with
}

// poolStatsCollector holds the counters owned by the Pool itself.
// Connection gauges come from the backend.
type poolStatsCollector struct {
	acquires       atomic.Uint64
	overflows      atomic.Uint64
	commandErrors  atomic.Uint64
	overflowActive atomic.Int32
}

func (c *poolStatsCollector) recordAcquire() {
	c.acquires.Add(1)
}

func (c *poolStatsCollector) recordOverflowOpen() {
	c.overflows.Add(1)
	c.overflowActive.Add(1)
}

func (c *poolStatsCollector) recordOverflowClose() {
	c.overflowActive.Add(-1)
}

func (c *poolStatsCollector) recordCommandError() {
	c.commandErrors.Add(1)
}

// merge adds the pool counters to the backend snapshot.
func (c *poolStatsCollector) merge(s PoolStats) PoolStats {
	s.AcquireCount = c.acquires.Load()
	s.OverflowCount = c.overflows.Load()
	s.CommandErrors = c.commandErrors.Load()
	s.OverflowConns = c.overflowActive.Load()
	return s
}
