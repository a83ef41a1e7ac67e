package collector

import (
	"context"

	"github.com/Guliveer/hostscope/internal/firewall"
)

// FirewallCollector adapts a firewall.Inspector to the Collector interface.
type FirewallCollector struct {
	inspector *firewall.Inspector
}

// NewFirewallCollector creates a new firewall collector.
func NewFirewallCollector(inspector *firewall.Inspector) *FirewallCollector {
	return &FirewallCollector{inspector: inspector}
}

// Name returns the collector identifier.
func (c *FirewallCollector) Name() string { return "firewall" }

// Collect returns a models.FirewallState.
func (c *FirewallCollector) Collect(ctx context.Context) (interface{}, error) {
	return c.inspector.Inspect(ctx), nil
}

// IsAvailable returns true.
func (c *FirewallCollector) IsAvailable() bool { return true }
