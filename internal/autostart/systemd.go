package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/platform"
)

const (
	serviceName    = "hostscope-agent"
	defaultUnitDir = "/etc/systemd/system"
)

// unitTemplate is the systemd unit file written during installation.
//
// KillMode=process keeps a detached update script alive when the agent exits
// after handing off to it.
const unitTemplate = `[Unit]
Description=Hostscope Telemetry Agent
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart={execStart}
Restart=on-failure
RestartSec=10
KillMode=process
StandardOutput=journal
StandardError=journal
SyslogIdentifier=hostscope-agent
NoNewPrivileges=true

[Install]
WantedBy=multi-user.target
`

// Systemd implements Manager with a systemd unit.
type Systemd struct {
	platform platform.Platform
	unitDir  string
	dataDir  string
	logger   *zap.Logger
}

var _ Manager = (*Systemd)(nil)

// NewSystemd returns a Manager that writes the unit to /etc/systemd/system
// and prepares dataDir for the artifact store.
func NewSystemd(p platform.Platform, dataDir string, logger *zap.Logger) *Systemd {
	return &Systemd{
		platform: p,
		unitDir:  defaultUnitDir,
		dataDir:  dataDir,
		logger:   logger.Named("autostart"),
	}
}

// ServiceName returns the systemd service name.
func (s *Systemd) ServiceName() string { return serviceName }

// UnitPath returns the path of the unit file.
func (s *Systemd) UnitPath() string {
	return filepath.Join(s.unitDir, serviceName+".service")
}

// IsInstalled checks whether the systemd unit file exists.
func (s *Systemd) IsInstalled() (bool, error) {
	_, err := os.Stat(s.UnitPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking unit file: %w", err)
	}
	return true, nil
}

// Install writes the unit file, reloads the daemon, enables and starts the service.
func (s *Systemd) Install(ctx context.Context, execPath, configPath string) error {
	if !s.platform.IsPrivileged() {
		return fmt.Errorf("installing %s requires root", serviceName)
	}
	if s.dataDir != "" {
		if err := os.MkdirAll(s.dataDir, 0750); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	if err := os.WriteFile(s.UnitPath(), []byte(renderUnit(execPath, configPath)), 0644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}
	s.logger.Info("Wrote unit file", zap.String("path", s.UnitPath()))

	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", serviceName},
		{"start", serviceName},
	} {
		if _, err := s.platform.Run(ctx, "systemctl", args...); err != nil {
			return fmt.Errorf("running systemctl %s: %w", strings.Join(args, " "), err)
		}
	}
	return nil
}

// Uninstall stops, disables, and removes the service.
func (s *Systemd) Uninstall(ctx context.Context) error {
	// Best-effort stop and disable; the service may already be inactive.
	for _, args := range [][]string{
		{"stop", serviceName},
		{"disable", serviceName},
	} {
		if _, err := s.platform.Run(ctx, "systemctl", args...); err != nil {
			s.logger.Debug("systemctl failed", zap.Strings("args", args), zap.Error(err))
		}
	}

	if err := os.Remove(s.UnitPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing unit file: %w", err)
	}

	_, _ = s.platform.Run(ctx, "systemctl", "daemon-reload")
	return nil
}

func renderUnit(execPath, configPath string) string {
	execStart := execPath
	if configPath != "" {
		execStart += " --config " + configPath
	}
	return strings.ReplaceAll(unitTemplate, "{execStart}", execStart)
}
