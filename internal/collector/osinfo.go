// OS info collector: gathers the host name and OS identity.
// Uses gopsutil host info, preferring the PRETTY_NAME of /etc/os-release
// as the OS name.
package collector

import (
	"context"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/platform"
)

const osReleasePath = "/etc/os-release"

// HostIdentity is the output of the OS info collector.
type HostIdentity struct {
	Hostname string
	OS       models.OSInfo
}

// OSInfoCollector collects the host name and OS information.
type OSInfoCollector struct {
	platform platform.Platform
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
}

// NewOSInfoCollector creates a new OS info collector.
func NewOSInfoCollector(p platform.Platform) *OSInfoCollector {
	return &OSInfoCollector{platform: p, hostInfo: host.InfoWithContext}
}

// Name returns the collector identifier.
func (c *OSInfoCollector) Name() string { return "osinfo" }

// Collect returns a HostIdentity.
func (c *OSInfoCollector) Collect(ctx context.Context) (interface{}, error) {
	info, err := c.hostInfo(ctx)
	if err != nil {
		return nil, err
	}

	id := HostIdentity{
		Hostname: info.Hostname,
		OS: models.OSInfo{
			Name:    info.Platform,
			Version: info.PlatformVersion,
			Kernel:  info.KernelVersion,
			Arch:    info.KernelArch,
		},
	}
	if name, err := c.platform.Hostname(); err == nil && name != "" {
		id.Hostname = name
	}

	if content, err := c.platform.ReadFile(osReleasePath); err == nil {
		fields := parseKeyValueFile(string(content))
		if pretty, ok := fields["PRETTY_NAME"]; ok {
			id.OS.Name = strings.Trim(pretty, "\"")
		}
		if version, ok := fields["VERSION_ID"]; ok && id.OS.Version == "" {
			id.OS.Version = strings.Trim(version, "\"")
		}
	}
	return id, nil
}

// IsAvailable returns true: OS info is available on all platforms.
func (c *OSInfoCollector) IsAvailable() bool { return true }

// parseKeyValueFile parses a file with KEY=VALUE lines (like /etc/os-release).
func parseKeyValueFile(content string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			fields[parts[0]] = parts[1]
		}
	}
	return fields
}
