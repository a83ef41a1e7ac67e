// Package collector defines the Collector interface and the collectors that
// gather host telemetry: hardware, OS, accounts, logins, firewall, services
// and resource usage.
package collector

import "context"

// Collector is the interface that all collectors must implement.
// Each collector gathers one facet of the host.
type Collector interface {
	// Name returns the unique identifier for this collector.
	Name() string

	// Collect gathers the data and returns it. Expected failures (missing
	// tools, denied access) are reported inside the result; an error means
	// the collector produced nothing usable.
	Collect(ctx context.Context) (interface{}, error)

	// IsAvailable checks if this collector can run on the current platform.
	// Collectors that return false will not be registered.
	IsAvailable() bool
}
