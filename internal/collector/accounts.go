package collector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
)

// AccountCollector reads the account database and classifies accounts.
type AccountCollector struct {
	platform       platform.Platform
	passwdPath     string
	disabledShells []string
	logger         *zap.Logger
}

// NewAccountCollector creates a collector for the passwd file at path.
// An empty disabledShells uses parser.DefaultDisabledShells.
func NewAccountCollector(p platform.Platform, path string, disabledShells []string, logger *zap.Logger) *AccountCollector {
	if len(disabledShells) == 0 {
		disabledShells = parser.DefaultDisabledShells
	}
	return &AccountCollector{
		platform:       p,
		passwdPath:     path,
		disabledShells: disabledShells,
		logger:         logger,
	}
}

// Name returns the collector identifier.
func (c *AccountCollector) Name() string { return "accounts" }

// Collect returns a models.AccountResult. A missing or unreadable database
// yields an empty summary.
func (c *AccountCollector) Collect(ctx context.Context) (interface{}, error) {
	content, err := c.platform.ReadFile(c.passwdPath)
	if err != nil {
		c.logger.Error("Failed to read account database", zap.String("path", c.passwdPath), zap.Error(err))
		return models.AccountResult{
			Summary:      models.NewAccountSummary(),
			Availability: models.Unavailable(platform.Reason(err), err.Error()),
		}, nil
	}

	return models.AccountResult{
		Summary:      parser.ParsePasswd(string(content), c.disabledShells),
		Availability: models.Available(),
	}, nil
}

// IsAvailable returns true.
func (c *AccountCollector) IsAvailable() bool { return true }
