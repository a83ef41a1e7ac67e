package collector

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Registry manages registered collectors and runs them one after another.
// A failing collector is logged and skipped; its siblings still run.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
	onFailure  func(name string, err error)
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		collectors: make([]Collector, 0),
		logger:     logger,
	}
}

// OnFailure sets a callback invoked for every collector that fails.
func (r *Registry) OnFailure(fn func(name string, err error)) {
	r.onFailure = fn
}

// Register adds a collector if it's available on the current platform.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if c.IsAvailable() {
		r.collectors = append(r.collectors, c)
		r.logger.Info("Registered collector", zap.String("name", c.Name()))
	} else {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
	}
}

// CollectAll runs all registered collectors in registration order and
// returns a map of collector name -> result data. Failed collectors,
// including ones that panic, are absent from the map.
func (r *Registry) CollectAll(ctx context.Context) map[string]interface{} {
	results := make(map[string]interface{}, len(r.collectors))

	for _, c := range r.collectors {
		data, err := r.collectOne(ctx, c)
		if err != nil {
			r.logger.Error("Collection failed",
				zap.String("collector", c.Name()),
				zap.Error(err))
			if r.onFailure != nil {
				r.onFailure(c.Name(), err)
			}
			continue
		}
		results[c.Name()] = data
	}

	return results
}

func (r *Registry) collectOne(ctx context.Context, c Collector) (data interface{}, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("collector panicked: %v", p)
		}
	}()
	return c.Collect(ctx)
}

// Names returns the names of the registered collectors in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.collectors))
	for i, c := range r.collectors {
		names[i] = c.Name()
	}
	return names
}

// Collectors returns a copy of all registered collectors.
func (r *Registry) Collectors() []Collector {
	result := make([]Collector, len(r.collectors))
	copy(result, r.collectors)
	return result
}
