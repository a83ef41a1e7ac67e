//go:build unix

package platform

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// Host is the Platform backed by the running operating system.
type Host struct {
	commandTimeout time.Duration
}

// New creates a host platform. A positive commandTimeout bounds every
// command started through Run; zero leaves commands unbounded.
func New(commandTimeout time.Duration) Platform {
	return &Host{commandTimeout: commandTimeout}
}

// Name returns the platform identifier.
func (h *Host) Name() string { return runtime.GOOS }

// Run executes a command and captures stdout and stderr separately.
func (h *Host) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if h.commandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.commandTimeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return out, &CommandError{
			Command: commandLine(name, args),
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return out, nil
}

// Executable checks that path is a regular file the agent may execute.
func (h *Host) Executable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}

// ReadFile reads a file from disk.
func (h *Host) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// IsPrivileged reports whether the effective user is root.
func (h *Host) IsPrivileged() bool {
	return unix.Geteuid() == 0
}

// Hostname returns the kernel host name.
func (h *Host) Hostname() (string, error) {
	return os.Hostname()
}
