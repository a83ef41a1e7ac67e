// CPU usage collector: gathers overall and per-core utilization, core
// counts and load averages. Uses gopsutil for the readings.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
)

// CPUCollector collects CPU usage metrics.
type CPUCollector struct {
	logger *zap.Logger
}

// NewCPUCollector creates a new CPU collector.
func NewCPUCollector(logger *zap.Logger) *CPUCollector {
	return &CPUCollector{logger: logger}
}

// Name returns the collector identifier.
func (c *CPUCollector) Name() string { return "cpu" }

// Collect gathers a models.CPUSample. The overall measurement blocks for
// one second to compute an accurate percentage; the remaining readings are
// best effort.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	overall, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		return nil, err
	}

	sample := models.CPUSample{PerCore: []float64{}}
	if len(overall) > 0 {
		sample.Percent = overall[0]
	}

	if cores, err := cpu.PercentWithContext(ctx, 0, true); err == nil {
		sample.PerCore = cores
	} else {
		c.logger.Debug("Per-core CPU usage unavailable", zap.Error(err))
	}

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		sample.LogicalCount = n
	}
	if n, err := cpu.CountsWithContext(ctx, false); err == nil {
		sample.PhysicalCount = n
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		sample.Load1 = avg.Load1
		sample.Load5 = avg.Load5
		sample.Load15 = avg.Load15
	} else {
		c.logger.Debug("Load averages unavailable", zap.Error(err))
	}

	return sample, nil
}

// IsAvailable returns true: CPU metrics are available on all platforms.
func (c *CPUCollector) IsAvailable() bool { return true }
