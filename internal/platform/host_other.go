//go:build !unix

package platform

import (
	"context"
	"os"
	"time"
)

// unsupportedPlatform reports every probe as unavailable on operating
// systems the agent does not inspect.
type unsupportedPlatform struct{}

// New returns a platform whose probes all fail with ErrUnsupported.
func New(time.Duration) Platform {
	return unsupportedPlatform{}
}

func (unsupportedPlatform) Name() string { return "unsupported" }

func (unsupportedPlatform) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	return nil, &CommandError{Command: commandLine(name, args), Err: ErrUnsupported}
}

func (unsupportedPlatform) Executable(string) bool { return false }

func (unsupportedPlatform) ReadFile(string) ([]byte, error) { return nil, ErrUnsupported }

func (unsupportedPlatform) IsPrivileged() bool { return false }

func (unsupportedPlatform) Hostname() (string, error) { return os.Hostname() }
