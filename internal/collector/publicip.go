package collector

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UnknownIP is reported when the public address cannot be determined.
const UnknownIP = "unknown"

// PublicIPCollector asks an echo service for the host's public address.
type PublicIPCollector struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewPublicIPCollector creates a collector querying url with the given
// timeout.
func NewPublicIPCollector(url string, timeout time.Duration, logger *zap.Logger) *PublicIPCollector {
	return &PublicIPCollector{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Name returns the collector identifier.
func (c *PublicIPCollector) Name() string { return "public_ip" }

// Collect returns the public address as a string, or UnknownIP. Lookup
// failures are logged and never returned.
func (c *PublicIPCollector) Collect(ctx context.Context) (interface{}, error) {
	ip, err := c.lookup(ctx)
	if err != nil {
		c.logger.Warn("Public IP lookup failed", zap.String("url", c.url), zap.Error(err))
		return UnknownIP, nil
	}
	return ip, nil
}

func (c *PublicIPCollector) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	ip := strings.TrimSpace(string(body))
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("not an IP address: %q", ip)
	}
	return ip, nil
}

// IsAvailable reports whether a lookup URL is configured.
func (c *PublicIPCollector) IsAvailable() bool { return c.url != "" }
