package updater

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/config"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest   string
		current  string
		expected bool
	}{
		{"1.0.1", "1.0.0", true},
		{"1.10.0", "1.9.0", true},
		{"v2.0.0", "1.99.99", true},
		{"1.0.0", "1.0.0", false},
		{"0.9.0", "1.0.0", false},
		{"1.0.0", "1.0.0-rc.1", true},
		{"1.0.0-rc.1", "1.0.0", false},
		// Shorthand and numeric-only versions
		{"v2", "v1", true},
		{"v10", "v9", true},
		{"v5", "v10", false},
		{"3", "v2", true},
		{"1.1", "1.0.9", true},
		// Dotted versions semver cannot express
		{"1.2.3.4", "1.2.3", true},
		{"1.2.3.4", "1.2.3.4", false},
		{"1.2.3", "1.2.3.1", false},
		// Incomparable versions are never newer
		{"dev", "1.0.0", false},
		{"1.0.0", "dev", false},
		{"", "1.0.0", false},
		{"1.0.0.beta", "1.0.0", false},
	}

	for _, tt := range tests {
		name := tt.latest + "_vs_" + tt.current
		t.Run(name, func(t *testing.T) {
			result := IsNewer(tt.latest, tt.current)
			if result != tt.expected {
				t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.latest, tt.current, result, tt.expected)
			}
		})
	}
}

func TestManifestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		version string
		valid   bool
	}{
		{"string version", `{"version":"1.2.0","update_script":"https://example.com/u.sh"}`, "1.2.0", true},
		{"numeric version", `{"version":1.1,"update_script":"https://example.com/u.sh"}`, "1.1", true},
		{"integer version", `{"version":2,"update_script":"http://example.com/u.sh"}`, "2", true},
		{"missing version", `{"update_script":"https://example.com/u.sh"}`, "", false},
		{"null version", `{"version":null,"update_script":"https://example.com/u.sh"}`, "", false},
		{"missing script", `{"version":"1.2.0"}`, "1.2.0", false},
		{"file script", `{"version":"1.2.0","update_script":"file:///tmp/u.sh"}`, "1.2.0", false},
		{"relative script", `{"version":"1.2.0","update_script":"/u.sh"}`, "1.2.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Manifest
			if err := json.Unmarshal([]byte(tt.body), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if m.Version != tt.version {
				t.Errorf("Version = %q, want %q", m.Version, tt.version)
			}
			if err := m.Validate(); (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, want valid=%v", err, tt.valid)
			}
		})
	}

	var m Manifest
	if err := json.Unmarshal([]byte(`{"version":["1"]}`), &m); err == nil {
		t.Error("expected an error for an array version")
	}
}

type updateServer struct {
	*httptest.Server
	manifest      string
	manifestCode  int
	scriptCode    int
	scriptFetches atomic.Int32
}

func newUpdateServer(t *testing.T, version string) *updateServer {
	t.Helper()
	s := &updateServer{manifestCode: http.StatusOK, scriptCode: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(s.manifestCode)
		_, _ = w.Write([]byte(s.manifest))
	})
	mux.HandleFunc("/update.sh", func(w http.ResponseWriter, r *http.Request) {
		s.scriptFetches.Add(1)
		w.WriteHeader(s.scriptCode)
		_, _ = w.Write([]byte("#!/bin/sh\necho updating\n"))
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	s.manifest = `{"version":"` + version + `","update_script":"` + s.URL + `/update.sh"}`
	return s
}

func newTestUpdater(t *testing.T, srv *updateServer, current string) (*Updater, *[]string) {
	t.Helper()
	cfg := config.UpdateConfig{
		Enabled:     true,
		ManifestURL: srv.URL + "/manifest.json",
		ScriptPath:  filepath.Join(t.TempDir(), "hostscope-update.sh"),
		Timeout:     config.Duration{Duration: 2 * time.Second},
	}
	u := New(current, cfg, zap.NewNop())
	var launched []string
	u.launch = func(path string) error {
		launched = append(launched, path)
		return nil
	}
	return u, &launched
}

func TestCheckAndUpdate_OlderManifest(t *testing.T) {
	srv := newUpdateServer(t, "0.9.0")
	u, launched := newTestUpdater(t, srv, "1.0.0")

	result, err := u.CheckAndUpdate(context.Background())
	if err != nil || result != ResultUpToDate {
		t.Fatalf("CheckAndUpdate() = %v, %v; want %v, nil", result, err, ResultUpToDate)
	}
	if n := srv.scriptFetches.Load(); n != 0 {
		t.Errorf("script downloaded %d times, want 0", n)
	}
	if len(*launched) != 0 {
		t.Errorf("launcher called for an older version")
	}
}

func TestCheckAndUpdate_HandsOff(t *testing.T) {
	srv := newUpdateServer(t, "1.10.0")
	u, launched := newTestUpdater(t, srv, "1.9.0")

	result, err := u.CheckAndUpdate(context.Background())
	if !errors.Is(err, ErrHandedOff) || result != ResultHandedOff {
		t.Fatalf("CheckAndUpdate() = %v, %v; want %v, ErrHandedOff", result, err, ResultHandedOff)
	}
	if len(*launched) != 1 || (*launched)[0] != u.config.ScriptPath {
		t.Fatalf("launched = %v, want [%s]", *launched, u.config.ScriptPath)
	}

	info, err := os.Stat(u.config.ScriptPath)
	if err != nil {
		t.Fatalf("stat script: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("script mode = %v, want 0700", info.Mode().Perm())
	}
	data, _ := os.ReadFile(u.config.ScriptPath)
	if string(data) != "#!/bin/sh\necho updating\n" {
		t.Errorf("script content = %q", data)
	}
}

func TestCheckAndUpdate_ReplacesStaleScript(t *testing.T) {
	srv := newUpdateServer(t, "2.0.0")
	u, _ := newTestUpdater(t, srv, "1.0.0")
	if err := os.WriteFile(u.config.ScriptPath, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := u.CheckAndUpdate(context.Background()); !errors.Is(err, ErrHandedOff) {
		t.Fatalf("CheckAndUpdate() error = %v, want ErrHandedOff", err)
	}
	data, _ := os.ReadFile(u.config.ScriptPath)
	if string(data) == "stale" {
		t.Error("stale script was not replaced")
	}
}

func TestCheckAndUpdate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(s *updateServer)
	}{
		{"manifest error status", func(s *updateServer) { s.manifestCode = http.StatusInternalServerError }},
		{"manifest not json", func(s *updateServer) { s.manifest = "<html>" }},
		{"manifest missing script", func(s *updateServer) { s.manifest = `{"version":"9.0.0"}` }},
		{"script not found", func(s *updateServer) { s.scriptCode = http.StatusNotFound }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newUpdateServer(t, "9.0.0")
			tt.setup(srv)
			u, launched := newTestUpdater(t, srv, "1.0.0")

			result, err := u.CheckAndUpdate(context.Background())
			if err != nil || result != ResultFailed {
				t.Fatalf("CheckAndUpdate() = %v, %v; want %v, nil", result, err, ResultFailed)
			}
			if len(*launched) != 0 {
				t.Error("launcher called after a failed check")
			}
			if _, err := os.Stat(u.config.ScriptPath); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("script left on disk: %v", err)
			}
		})
	}
}

func TestCheckAndUpdate_LaunchFailure(t *testing.T) {
	srv := newUpdateServer(t, "2.0.0")
	u, _ := newTestUpdater(t, srv, "1.0.0")
	u.launch = func(string) error { return errors.New("exec format error") }

	result, err := u.CheckAndUpdate(context.Background())
	if err != nil || result != ResultFailed {
		t.Fatalf("CheckAndUpdate() = %v, %v; want %v, nil", result, err, ResultFailed)
	}
}

func TestCheckAndUpdate_Skipped(t *testing.T) {
	srv := newUpdateServer(t, "2.0.0")

	dev, _ := newTestUpdater(t, srv, "dev")
	disabled, _ := newTestUpdater(t, srv, "1.0.0")
	disabled.config.Enabled = false

	for _, u := range []*Updater{dev, disabled} {
		result, err := u.CheckAndUpdate(context.Background())
		if err != nil || result != ResultSkipped {
			t.Errorf("CheckAndUpdate() = %v, %v; want %v, nil", result, err, ResultSkipped)
		}
	}
	if n := srv.scriptFetches.Load(); n != 0 {
		t.Errorf("script downloaded %d times, want 0", n)
	}
}
