package monitoring

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a point-in-time view of the machine running the server.
type HostStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Load1             float64 `json:"load1"`
	UptimeSeconds     uint64  `json:"uptime_seconds"`
}

// StatsProvider reports host statistics.
type StatsProvider interface {
	Snapshot(ctx context.Context) (HostStats, error)
}

// StatsCollector reads host statistics through gopsutil.
type StatsCollector struct{}

// NewStatsCollector creates a new StatsCollector.
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

// Snapshot collects what it can; fields whose probe fails stay zero and the
// probe errors are joined into the returned error.
func (c *StatsCollector) Snapshot(ctx context.Context) (HostStats, error) {
	var stats HostStats
	var errs []error

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else {
		stats.MemoryUsedPercent = vm.UsedPercent
	}

	if avg, err := load.AvgWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else {
		stats.Load1 = avg.Load1
	}

	if uptime, err := host.UptimeWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else {
		stats.UptimeSeconds = uptime
	}

	return stats, errors.Join(errs...)
}
