// Network I/O collector: gathers cumulative counters and computes deltas.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/hostscope/internal/models"
)

// NetworkCollector collects network I/O counters, total and per interface.
// It tracks the previous totals to compute deltas between collections.
type NetworkCollector struct {
	lastSent    uint64
	lastRecv    uint64
	initialized bool
}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Name returns the collector identifier.
func (c *NetworkCollector) Name() string { return "network" }

// Collect gathers a models.NetworkSample. The first collection reports zero
// deltas while establishing a baseline. PublicIP is filled in separately.
func (c *NetworkCollector) Collect(ctx context.Context) (interface{}, error) {
	totals, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	perNIC, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		perNIC = nil
	}

	sample := models.NetworkSample{Interfaces: make([]models.InterfaceCounters, 0, len(perNIC))}
	for _, n := range perNIC {
		sample.Interfaces = append(sample.Interfaces, models.InterfaceCounters{
			Name:        n.Name,
			BytesSent:   n.BytesSent,
			BytesRecv:   n.BytesRecv,
			PacketsSent: n.PacketsSent,
			PacketsRecv: n.PacketsRecv,
			Errin:       n.Errin,
			Errout:      n.Errout,
		})
	}
	if len(totals) == 0 {
		return sample, nil
	}

	c.observe(&sample, totals[0].BytesSent, totals[0].BytesRecv)
	return sample, nil
}

// observe records the totals and the deltas since the previous call.
func (c *NetworkCollector) observe(sample *models.NetworkSample, sent, recv uint64) {
	sample.BytesSent = sent
	sample.BytesRecv = recv
	if c.initialized {
		sample.DeltaSent = counterDelta(c.lastSent, sent)
		sample.DeltaRecv = counterDelta(c.lastRecv, recv)
	}
	c.lastSent = sent
	c.lastRecv = recv
	c.initialized = true
}

// counterDelta returns cur-prev. A counter that went backwards was reset
// (reboot or interface re-creation), so everything counted since is new.
func counterDelta(prev, cur uint64) uint64 {
	if cur < prev {
		return cur
	}
	return cur - prev
}

// IsAvailable returns true: network metrics are available on all platforms.
func (c *NetworkCollector) IsAvailable() bool { return true }
