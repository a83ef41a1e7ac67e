package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
)

// LoginCollector reads the login history with `last -F`.
type LoginCollector struct {
	platform platform.Platform
	logger   *zap.Logger
}

// NewLoginCollector creates a new login history collector.
func NewLoginCollector(p platform.Platform, logger *zap.Logger) *LoginCollector {
	return &LoginCollector{platform: p, logger: logger}
}

// Name returns the collector identifier.
func (c *LoginCollector) Name() string { return "logins" }

// Collect returns a models.LoginResult. Tool failure yields no records.
func (c *LoginCollector) Collect(ctx context.Context) (interface{}, error) {
	out, err := c.platform.Run(ctx, "last", "-F")
	if err != nil {
		c.logger.Error("Failed to read login history", zap.Error(err))
		return models.LoginResult{
			Records:      []models.LoginRecord{},
			Availability: models.Unavailable(platform.Reason(err), err.Error()),
		}, nil
	}

	return models.LoginResult{
		Records:      parser.ParseLast(string(out)),
		Availability: models.Available(),
	}, nil
}

// IsAvailable returns true.
func (c *LoginCollector) IsAvailable() bool { return true }
