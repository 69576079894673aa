package metrics

import (
	"context"
	"log/slog"
	"time"
)

// StatsSource provides pool snapshots.
type StatsSource interface {
	PoolStats() PoolStats
}

// PoolCollector refreshes the pool gauges on a fixed interval.
type PoolCollector struct {
	interval time.Duration
	source   StatsSource
	registry *Registry
}

func NewPoolCollector(interval time.Duration, source StatsSource, registry *Registry) *PoolCollector {
	return &PoolCollector{
		interval: interval,
		source:   source,
		registry: registry,
	}
}

// Start publishes one snapshot immediately and then one per tick.
// Runs until context is cancelled.
func (c *PoolCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	slog.Info("[Metrics] Starting pool stats collector", "interval", c.interval)

	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-ctx.Done():
			slog.Info("[Metrics] Stopping pool stats collector (context cancelled)")
			return nil
		}
	}
}

func (c *PoolCollector) collect() {
	stats := c.source.PoolStats()
	c.registry.SetPoolStats(stats)

	if stats.MaxOpen > 0 && stats.Acquired >= stats.MaxOpen {
		slog.Warn("[Metrics] Connection pool saturated",
			"acquired", stats.Acquired,
			"max_open", stats.MaxOpen,
			"wait_count", stats.WaitCount,
		)
	}
}
