package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/collector"
	"github.com/Guliveer/hostscope/internal/config"
	"github.com/Guliveer/hostscope/internal/firewall"
	"github.com/Guliveer/hostscope/internal/metrics"
	"github.com/Guliveer/hostscope/internal/models"
	"github.com/Guliveer/hostscope/internal/parser"
	"github.com/Guliveer/hostscope/internal/platform"
	"github.com/Guliveer/hostscope/internal/store"
	"github.com/Guliveer/hostscope/internal/updater"
)

type stubCollector struct {
	name  string
	data  interface{}
	err   error
	calls int
	hook  func()
}

func (s *stubCollector) Name() string      { return s.name }
func (s *stubCollector) IsAvailable() bool { return true }
func (s *stubCollector) Collect(context.Context) (interface{}, error) {
	s.calls++
	if s.hook != nil {
		s.hook()
	}
	return s.data, s.err
}

type recordingSender struct {
	snaps   []store.Snapshot
	ctxErrs []error
	err     error
}

func (r *recordingSender) Send(ctx context.Context, snap store.Snapshot) error {
	r.snaps = append(r.snaps, snap)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}

type stubUpdater struct {
	result updater.Result
	err    error
	calls  int
}

func (u *stubUpdater) CheckAndUpdate(context.Context) (updater.Result, error) {
	u.calls++
	return u.result, u.err
}

type harness struct {
	sched    *Scheduler
	store    *store.Store
	sender   *recordingSender
	updater  *stubUpdater
	osinfo   *stubCollector
	cpu      *stubCollector
	memory   *stubCollector
	services *stubCollector
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()

	st, err := store.New(t.TempDir(), logger)
	if err != nil {
		t.Fatal(err)
	}

	h := &harness{
		store:   st,
		sender:  &recordingSender{},
		updater: &stubUpdater{result: updater.ResultUpToDate},
		osinfo: &stubCollector{name: "osinfo", data: collector.HostIdentity{
			Hostname: "web-01",
			OS:       models.OSInfo{Name: "Ubuntu 22.04.4 LTS", Version: "22.04"},
		}},
		cpu:    &stubCollector{name: "cpu", data: models.CPUSample{Percent: 12.5, PerCore: []float64{}}},
		memory: &stubCollector{name: "memory", err: errors.New("no meminfo")},
		services: &stubCollector{name: "services", data: models.ServiceInventory{
			Services:     []models.ServiceRecord{{Name: "nginx", LoadState: "loaded", ActiveState: "active", SubState: "running"}},
			Availability: models.Available(),
		}},
	}

	daily := collector.NewRegistry(logger)
	daily.Register(h.osinfo)
	inspector := firewall.NewInspector(&platform.Fake{}, parser.IptablesLayoutAuto, logger)
	daily.Register(collector.NewFirewallCollector(inspector))

	periodic := collector.NewRegistry(logger)
	periodic.Register(h.cpu)
	periodic.Register(h.memory)
	periodic.Register(h.services)

	cfg := config.DefaultConfig()
	cfg.Collection.Interval = config.Duration{Duration: time.Minute}

	h.sched = New(Deps{
		Daily:    daily,
		Periodic: periodic,
		Store:    st,
		Sender:   h.sender,
		Updater:  h.updater,
		Metrics:  metrics.New(),
	}, cfg, logger)
	return h
}

// clock returns the given times in order, repeating the last one.
func clock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func TestRunOnce_WritesArtifactsAndSends(t *testing.T) {
	h := newHarness(t)
	h.sched.now = clock(time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC))

	if err := h.sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() = %v", err)
	}
	if h.sched.State() != StateIdle {
		t.Errorf("State() = %s, want %s", h.sched.State(), StateIdle)
	}

	if len(h.sender.snaps) != 1 {
		t.Fatalf("sent %d snapshots, want 1", len(h.sender.snaps))
	}
	snap := h.sender.snaps[0]
	for _, name := range store.SnapshotArtifacts {
		if _, ok := snap[name]; !ok {
			t.Errorf("snapshot missing %s", name)
		}
	}

	var info models.SystemInfo
	if err := json.Unmarshal(snap[store.SystemInfoFile], &info); err != nil {
		t.Fatal(err)
	}
	if info.Hostname != "web-01" {
		t.Errorf("Hostname = %q", info.Hostname)
	}
	if info.HardwareStatus.OK() {
		t.Error("hardware status should be unavailable without a hardware collector")
	}

	var sample models.ResourceSample
	if err := json.Unmarshal(snap[store.ResourceUsageFile], &sample); err != nil {
		t.Fatal(err)
	}
	if sample.CPU.Percent != 12.5 {
		t.Errorf("CPU.Percent = %v, want 12.5", sample.CPU.Percent)
	}
	if !reflect.DeepEqual(sample.Unavailable, []string{"memory"}) {
		t.Errorf("Unavailable = %v, want [memory]", sample.Unavailable)
	}
	if sample.Network.PublicIP != collector.UnknownIP {
		t.Errorf("PublicIP = %q, want %q", sample.Network.PublicIP, collector.UnknownIP)
	}

	var fw struct {
		ActiveFirewall string `json:"active_firewall"`
	}
	if err := json.Unmarshal(snap[store.FirewallFile], &fw); err != nil {
		t.Fatal(err)
	}
	if fw.ActiveFirewall != string(models.FirewallUnknown) {
		t.Errorf("active_firewall = %q, want unknown", fw.ActiveFirewall)
	}
}

func TestRun_DailyTasksOncePerDay(t *testing.T) {
	h := newHarness(t)
	h.sched.now = clock(
		time.Date(2024, 10, 14, 23, 50, 0, 0, time.Local),
		time.Date(2024, 10, 14, 23, 55, 0, 0, time.Local),
		time.Date(2024, 10, 15, 0, 0, 0, 0, time.Local),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	h.sched.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		if h.sched.State() != StateSleep {
			t.Errorf("State() during sleep = %s", h.sched.State())
		}
		if len(sleeps) == 3 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	if err := h.sched.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if h.cpu.calls != 3 {
		t.Errorf("periodic collector ran %d times, want 3", h.cpu.calls)
	}
	if h.osinfo.calls != 2 {
		t.Errorf("daily collector ran %d times, want 2", h.osinfo.calls)
	}
	if h.updater.calls != 2 {
		t.Errorf("update checked %d times, want 2", h.updater.calls)
	}
	if len(h.sender.snaps) != 3 {
		t.Errorf("sent %d snapshots, want 3", len(h.sender.snaps))
	}
	for _, d := range sleeps {
		if d != time.Minute {
			t.Errorf("slept %v, want 1m", d)
		}
	}
}

func TestRun_HandoffStopsLoop(t *testing.T) {
	h := newHarness(t)
	h.updater.result = updater.ResultHandedOff
	h.updater.err = updater.ErrHandedOff
	h.sched.sleep = func(context.Context, time.Duration) error {
		t.Fatal("scheduler slept after handoff")
		return nil
	}

	err := h.sched.Run(context.Background())
	if !errors.Is(err, updater.ErrHandedOff) {
		t.Fatalf("Run() = %v, want ErrHandedOff", err)
	}
	if h.osinfo.calls != 0 || h.cpu.calls != 0 {
		t.Error("collectors ran after handoff")
	}
	if len(h.sender.snaps) != 0 {
		t.Error("snapshot sent after handoff")
	}
}

func TestRunOnce_UpdateFailureContinues(t *testing.T) {
	h := newHarness(t)
	h.updater.result = updater.ResultFailed

	if err := h.sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() = %v", err)
	}
	if h.osinfo.calls != 1 || h.cpu.calls != 1 {
		t.Error("collectors did not run after a failed update check")
	}
	if len(h.sender.snaps) != 1 {
		t.Error("snapshot not sent after a failed update check")
	}
}

func TestRunOnce_SendFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.sender.err = errors.New("connection refused")

	if err := h.sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() = %v", err)
	}
	if h.sched.State() != StateIdle {
		t.Errorf("State() = %s", h.sched.State())
	}
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.sched.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if h.updater.calls != 0 || h.cpu.calls != 0 {
		t.Error("work ran on a cancelled context")
	}
}

func TestRun_InFlightCycleCompletes(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.cpu.hook = cancel
	h.sched.sleep = func(ctx context.Context, _ time.Duration) error {
		return ctx.Err()
	}

	if err := h.sched.Run(ctx); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if h.services.calls != 1 {
		t.Error("collectors after the cancellation point did not run")
	}
	if len(h.sender.snaps) != 1 {
		t.Fatalf("sent %d snapshots, want 1", len(h.sender.snaps))
	}
	if h.sender.ctxErrs[0] != nil {
		t.Errorf("transmission ran on a cancelled context: %v", h.sender.ctxErrs[0])
	}
}

func TestAssembleResources(t *testing.T) {
	now := time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC)
	results := map[string]interface{}{
		"network":   models.NetworkSample{BytesSent: 10, PublicIP: "ignored"},
		"public_ip": "203.0.113.9",
		"services":  models.ServiceInventory{},
	}

	sample := assembleResources(results, []string{"network", "public_ip", "sensors", "services"}, now)
	if sample.Network.BytesSent != 10 {
		t.Errorf("BytesSent = %d", sample.Network.BytesSent)
	}
	if sample.Network.PublicIP != "203.0.113.9" {
		t.Errorf("PublicIP = %q", sample.Network.PublicIP)
	}
	if !reflect.DeepEqual(sample.Unavailable, []string{"sensors"}) {
		t.Errorf("Unavailable = %v, want [sensors]", sample.Unavailable)
	}
	if sample.Sessions == nil {
		t.Error("Sessions should be an empty list, not nil")
	}
}
