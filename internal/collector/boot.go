// Boot collector: gathers the last boot time and the uptime.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Guliveer/hostscope/internal/models"
)

// BootCollector collects the boot time and seconds since boot.
type BootCollector struct{}

// NewBootCollector creates a new boot collector.
func NewBootCollector() *BootCollector {
	return &BootCollector{}
}

// Name returns the collector identifier.
func (c *BootCollector) Name() string { return "boot" }

// Collect gathers a models.BootInfo.
func (c *BootCollector) Collect(ctx context.Context) (interface{}, error) {
	bootTime, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return nil, err
	}
	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return models.BootInfo{
		BootTime:      time.Unix(int64(bootTime), 0).UTC(),
		UptimeSeconds: uptime,
	}, nil
}

// IsAvailable returns true: boot time is available on all platforms.
func (c *BootCollector) IsAvailable() bool { return true }
