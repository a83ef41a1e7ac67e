// Package scheduler implements the agent's collection loop. Each iteration
// runs the daily tasks when the day of month has changed since they last ran,
// then the periodic tasks, then sleeps for the configured interval.
//
// The loop state (current phase, last daily day) lives on the Scheduler.
// Cancellation is observed only between iterations: a cycle that has started
// runs to completion.
package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/collector"
	"github.com/Guliveer/hostscope/internal/config"
	"github.com/Guliveer/hostscope/internal/metrics"
	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/sender"
	"github.com/Guliveer/hostscope/internal/store"
	"github.com/Guliveer/hostscope/internal/updater"
)

// State is the phase the loop is in.
type State string

const (
	StateIdle     State = "IDLE"
	StateDaily    State = "DAILY_TASKS"
	StatePeriodic State = "PERIODIC_TASKS"
	StateSleep    State = "SLEEP"
)

// Transmitter sends a snapshot of the artifact store.
type Transmitter interface {
	Send(ctx context.Context, snap store.Snapshot) error
}

// UpdateChecker runs the daily update check. It returns updater.ErrHandedOff
// once an update script has taken over.
type UpdateChecker interface {
	CheckAndUpdate(ctx context.Context) (updater.Result, error)
}

// Deps are the components driven by the scheduler.
type Deps struct {
	Daily    *collector.Registry
	Periodic *collector.Registry
	Store    *store.Store
	Sender   Transmitter
	Updater  UpdateChecker
	Metrics  *metrics.Metrics
}

// Scheduler runs the daily and periodic phases.
type Scheduler struct {
	deps     Deps
	interval time.Duration
	textfile string
	logger   *zap.Logger

	state        State
	lastDailyDay int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a new Scheduler. The daily marker starts at 0 so the first
// iteration always runs the daily tasks.
func New(deps Deps, cfg *config.Config, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		deps:     deps,
		interval: cfg.Collection.Interval.Duration,
		textfile: cfg.Metrics.Textfile,
		logger:   logger.Named("scheduler"),
		state:    StateIdle,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// State returns the current phase.
func (s *Scheduler) State() State {
	return s.state
}

// Run loops until ctx is cancelled or an update hands off. It returns
// updater.ErrHandedOff in the latter case and nil otherwise.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Scheduler started", zap.Duration("interval", s.interval))
	for {
		if ctx.Err() != nil {
			s.logger.Info("Scheduler stopped")
			return nil
		}

		if err := s.RunOnce(ctx); err != nil {
			return err
		}

		s.state = StateSleep
		if err := s.sleep(ctx, s.interval); err != nil {
			s.state = StateIdle
			s.logger.Info("Scheduler stopped")
			return nil
		}
		s.state = StateIdle
	}
}

// RunOnce runs one iteration: the daily tasks when due, then the periodic
// tasks. The iteration ignores cancellation of ctx once started.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	work := context.WithoutCancel(ctx)
	now := s.now()

	if now.Day() != s.lastDailyDay {
		s.state = StateDaily
		if err := s.runDaily(work, now); err != nil {
			return err
		}
		s.lastDailyDay = now.Day()
	}

	s.state = StatePeriodic
	s.runPeriodic(work, now)
	s.state = StateIdle
	return nil
}

func (s *Scheduler) runDaily(ctx context.Context, now time.Time) error {
	s.logger.Info("Running daily tasks", zap.Int("day", now.Day()))

	if s.deps.Updater != nil {
		result, err := s.deps.Updater.CheckAndUpdate(ctx)
		s.deps.Metrics.UpdateChecked(string(result))
		if errors.Is(err, updater.ErrHandedOff) {
			return err
		}
		if err != nil {
			s.logger.Warn("Update check failed", zap.Error(err))
		}
	}

	results := s.deps.Daily.CollectAll(ctx)
	s.write(store.SystemInfoFile, assembleSystemInfo(results, now))
	if fw, ok := results["firewall"].(models.FirewallState); ok {
		s.write(store.FirewallFile, fw)
	}

	s.deps.Metrics.CycleCompleted(metrics.PhaseDaily, now)
	return nil
}

func (s *Scheduler) runPeriodic(ctx context.Context, now time.Time) {
	results := s.deps.Periodic.CollectAll(ctx)

	s.write(store.ResourceUsageFile, assembleResources(results, s.deps.Periodic.Names(), now))
	if inv, ok := results["services"].(models.ServiceInventory); ok {
		s.write(store.ServicesFile, inv)
	}

	s.transmit(ctx)

	s.deps.Metrics.CycleCompleted(metrics.PhasePeriodic, now)
	if err := s.deps.Metrics.WriteTextfile(s.textfile); err != nil {
		s.logger.Warn("Failed to export metrics", zap.Error(err))
	}
}

func (s *Scheduler) write(name string, v interface{}) {
	err := s.deps.Store.Write(name, v)
	s.deps.Metrics.ArtifactWritten(name, err)
	if err != nil {
		s.logger.Error("Failed to write artifact",
			zap.String("path", s.deps.Store.Path(name)),
			zap.Error(err))
	}
}

func (s *Scheduler) transmit(ctx context.Context) {
	snap, missing := s.deps.Store.ReadSnapshot()
	if len(missing) > 0 {
		s.logger.Warn("Snapshot is incomplete", zap.Strings("missing", missing))
	}

	err := s.deps.Sender.Send(ctx, snap)
	if errors.Is(err, sender.ErrEmptySnapshot) {
		s.logger.Warn("Nothing to send")
		return
	}
	s.deps.Metrics.Transmitted(err)
	if err != nil {
		s.logger.Error("Failed to send snapshot", zap.Error(err))
		return
	}
	s.logger.Info("Snapshot sent", zap.Int("artifacts", len(snap)))
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
