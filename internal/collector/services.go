package collector

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
)

// ServiceCollector lists systemd service units.
type ServiceCollector struct {
	platform platform.Platform
	logger   *zap.Logger
}

// NewServiceCollector creates a new service inventory collector.
func NewServiceCollector(p platform.Platform, logger *zap.Logger) *ServiceCollector {
	return &ServiceCollector{platform: p, logger: logger}
}

// Name returns the collector identifier.
func (c *ServiceCollector) Name() string { return "services" }

// Collect returns a models.ServiceInventory. A failing systemctl yields an
// empty listing and an unavailable status.
func (c *ServiceCollector) Collect(ctx context.Context) (interface{}, error) {
	inv := models.ServiceInventory{
		Timestamp: time.Now().UTC(),
		Services:  []models.ServiceRecord{},
	}

	out, err := c.platform.Run(ctx, "systemctl", "list-units", "--type=service", "--all", "--no-pager")
	if err != nil {
		c.logger.Error("Failed to list services", zap.Error(err))
		inv.Availability = models.Unavailable(platform.Reason(err), err.Error())
		return inv, nil
	}

	inv.Services = parser.ParseUnitList(string(out))
	inv.Availability = models.Available()
	return inv, nil
}

// IsAvailable returns true.
func (c *ServiceCollector) IsAvailable() bool { return true }
