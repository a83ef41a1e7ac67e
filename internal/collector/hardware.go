package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
)

// HardwareCollector reads the DMI tables with dmidecode. Reading them
// requires root; without it the collector reports an empty inventory.
type HardwareCollector struct {
	platform platform.Platform
	logger   *zap.Logger
}

// NewHardwareCollector creates a new hardware collector.
func NewHardwareCollector(p platform.Platform, logger *zap.Logger) *HardwareCollector {
	return &HardwareCollector{platform: p, logger: logger}
}

// Name returns the collector identifier.
func (c *HardwareCollector) Name() string { return "hardware" }

// Collect returns a models.HardwareResult. It never fails.
func (c *HardwareCollector) Collect(ctx context.Context) (interface{}, error) {
	if !c.platform.IsPrivileged() {
		c.logger.Warn("Hardware inventory needs root privileges, skipping dmidecode")
		return models.HardwareResult{
			Inventory:    models.NewHardwareInventory(),
			Availability: models.Unavailable(models.ReasonPermissionDenied, "dmidecode requires root"),
		}, nil
	}

	out, err := c.platform.Run(ctx, "dmidecode")
	if err != nil {
		// dmidecode explains missing or unreadable tables on stderr.
		status, known := parser.DMIFailure(platform.StderrOf(err))
		if !known {
			status = models.Unavailable(platform.Reason(err), err.Error())
		}
		c.logger.Warn("dmidecode failed",
			zap.String("reason", string(status.Reason)),
			zap.Error(err))
		return models.HardwareResult{Inventory: models.NewHardwareInventory(), Availability: status}, nil
	}

	inv, status := parser.ParseDMI(string(out))
	if !status.OK() {
		c.logger.Warn("No DMI tables", zap.String("reason", string(status.Reason)), zap.String("detail", status.Detail))
	}
	return models.HardwareResult{Inventory: inv, Availability: status}, nil
}

// IsAvailable returns true.
func (c *HardwareCollector) IsAvailable() bool { return true }
