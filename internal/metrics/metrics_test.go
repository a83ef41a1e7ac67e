package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	at := time.Unix(1700000000, 0)

	m.CycleCompleted(PhaseDaily, at)
	m.CycleCompleted(PhasePeriodic, at)
	m.CycleCompleted(PhasePeriodic, at.Add(time.Minute))
	m.CollectorFailed("hardware")
	m.ArtifactWritten("services.json", nil)
	m.ArtifactWritten("services.json", errors.New("disk full"))
	m.Transmitted(nil)
	m.UpdateChecked("up_to_date")

	if got := testutil.ToFloat64(m.cycles.WithLabelValues(PhasePeriodic)); got != 2 {
		t.Errorf("periodic cycles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cycles.WithLabelValues(PhaseDaily)); got != 1 {
		t.Errorf("daily cycles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.lastCycle); got != float64(at.Add(time.Minute).Unix()) {
		t.Errorf("last cycle = %v", got)
	}
	if got := testutil.ToFloat64(m.artifactWrites.WithLabelValues("services.json", ResultError)); got != 1 {
		t.Errorf("failed writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transmissions.WithLabelValues(ResultOK)); got != 1 {
		t.Errorf("transmissions = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.collectorFailures); got != 1 {
		t.Errorf("collector failure series = %d, want 1", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.UpdateChecked("skipped")

	path := filepath.Join(t.TempDir(), "hostscope.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `hostscope_update_checks_total{result="skipped"} 1`) {
		t.Errorf("textfile missing update counter:\n%s", data)
	}
}

func TestWriteTextfile_Disabled(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Fatalf("WriteTextfile(\"\") = %v, want nil", err)
	}
}
