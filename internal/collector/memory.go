// Memory collector: gathers RAM and swap usage.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/Guliveer/hostscope/internal/models"
)

// MemoryCollector collects RAM and swap usage metrics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Name returns the collector identifier.
func (c *MemoryCollector) Name() string { return "memory" }

// Collect gathers a models.MemorySample. Swap is left at zero when the
// host has none or it cannot be read.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}

	sample := models.MemorySample{
		Total:     v.Total,
		Available: v.Available,
		Used:      v.Used,
		Percent:   v.UsedPercent,
	}
	if s, err := mem.SwapMemoryWithContext(ctx); err == nil {
		sample.SwapTotal = s.Total
		sample.SwapUsed = s.Used
		sample.SwapPercent = s.UsedPercent
	}
	return sample, nil
}

// IsAvailable returns true: memory metrics are available on all platforms.
func (c *MemoryCollector) IsAvailable() bool { return true }
