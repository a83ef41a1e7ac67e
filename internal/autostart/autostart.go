// Package autostart installs the agent as a systemd service.
package autostart

import "context"

// Manager provides autostart installation.
type Manager interface {
	IsInstalled() (bool, error)
	Install(ctx context.Context, execPath, configPath string) error
	Uninstall(ctx context.Context) error
	ServiceName() string
}
