// Package metrics keeps agent self-metrics and exports them in the
// node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hostscope"

// Label values shared by callers.
const (
	PhaseDaily    = "daily"
	PhasePeriodic = "periodic"

	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the agent's counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cycles            *prometheus.CounterVec
	collectorFailures *prometheus.CounterVec
	artifactWrites    *prometheus.CounterVec
	transmissions     *prometheus.CounterVec
	updateChecks      *prometheus.CounterVec
	lastCycle         prometheus.Gauge
}

// New creates and registers the agent metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Completed collection cycles by phase.",
			},
			[]string{"phase"},
		),
		collectorFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "collector_failures_total",
				Help:      "Collector runs that returned an error.",
			},
			[]string{"collector"},
		),
		artifactWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_writes_total",
				Help:      "Artifact store writes by artifact and result.",
			},
			[]string{"artifact", "result"},
		),
		transmissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transmissions_total",
				Help:      "Snapshot transmissions by result.",
			},
			[]string{"result"},
		),
		updateChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "update_checks_total",
				Help:      "Update checks by outcome.",
			},
			[]string{"result"},
		),
		lastCycle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_cycle_timestamp_seconds",
				Help:      "Unix time of the last completed periodic cycle.",
			},
		),
	}
	m.registry.MustRegister(
		m.cycles,
		m.collectorFailures,
		m.artifactWrites,
		m.transmissions,
		m.updateChecks,
		m.lastCycle,
	)
	return m
}

// Registry returns the registry holding the agent metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CycleCompleted counts a finished phase. A periodic phase also moves the
// last-cycle timestamp.
func (m *Metrics) CycleCompleted(phase string, at time.Time) {
	m.cycles.WithLabelValues(phase).Inc()
	if phase == PhasePeriodic {
		m.lastCycle.Set(float64(at.Unix()))
	}
}

// CollectorFailed counts a failed collector run.
func (m *Metrics) CollectorFailed(name string) {
	m.collectorFailures.WithLabelValues(name).Inc()
}

// ArtifactWritten counts a store write.
func (m *Metrics) ArtifactWritten(artifact string, err error) {
	m.artifactWrites.WithLabelValues(artifact, result(err)).Inc()
}

// Transmitted counts a snapshot transmission.
func (m *Metrics) Transmitted(err error) {
	m.transmissions.WithLabelValues(result(err)).Inc()
}

// UpdateChecked counts an update check by its outcome label.
func (m *Metrics) UpdateChecked(outcome string) {
	m.updateChecks.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes all metrics to path atomically. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
