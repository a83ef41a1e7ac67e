// Package platform abstracts the host operations collectors depend on:
// running external commands, probing executables, reading files and checking
// privileges. Collectors take a Platform so tests can substitute a Fake.
package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/Guliveer/hostscope/internal/models"
)

// Platform provides host access beyond what gopsutil offers.
type Platform interface {
	// Run executes name with args and returns its stdout. A non-zero exit,
	// a missing executable or a timeout is reported as a *CommandError.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// Executable reports whether path exists and is executable.
	Executable(path string) bool

	// ReadFile returns the contents of the file at path.
	ReadFile(path string) ([]byte, error)

	// IsPrivileged reports whether the agent runs with root privileges.
	IsPrivileged() bool

	// Hostname returns the host name reported by the kernel.
	Hostname() (string, error)

	// Name returns the platform identifier (linux, darwin, unsupported, fake).
	Name() string
}

// CommandError describes a failed external command.
type CommandError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// StderrOf returns the captured stderr of a *CommandError, or "".
func StderrOf(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Stderr
	}
	return ""
}

// Reason maps an error returned by a Platform to an availability reason.
func Reason(err error) models.Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return models.ReasonNotInstalled
	case errors.Is(err, fs.ErrPermission):
		return models.ReasonPermissionDenied
	case errors.Is(err, ErrUnsupported):
		return models.ReasonUnsupported
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		if isDenied(cmdErr.Stderr) {
			return models.ReasonPermissionDenied
		}
		return models.ReasonCommandFailed
	}
	return models.ReasonIO
}

// ErrUnsupported is returned by platforms that cannot run host probes.
var ErrUnsupported = errors.New("platform not supported")

func isDenied(stderr string) bool {
	return strings.Contains(stderr, "Permission denied") ||
		strings.Contains(stderr, "Operation not permitted") ||
		strings.Contains(stderr, "must be root")
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
