// Package store persists the agent's JSON artifacts on local disk and reads
// them back as a snapshot for transmission. Each artifact is a single file
// overwritten every time it is refreshed; no history is kept.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Artifact file names.
const (
	SystemInfoFile    = "system_info.json"
	ResourceUsageFile = "resource_usage.json"
	ServicesFile      = "services.json"
	FirewallFile      = "firewall_info.json"
)

// SnapshotArtifacts lists the artifacts shipped in a snapshot, in the order
// they are read.
var SnapshotArtifacts = []string{SystemInfoFile, ResourceUsageFile, ServicesFile, FirewallFile}

const tempPrefix = ".tmp-"

// Snapshot maps an artifact file name to its raw JSON content. The content
// is carried as written, byte for byte.
type Snapshot map[string]json.RawMessage

// Store reads and writes artifacts under a single directory.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a store at the given directory path. The directory is created
// if it does not exist and leftovers of interrupted writes are removed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{dir: dir, logger: logger}
	s.removeStaleTemps()
	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the full path of an artifact.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// Write serializes v as compact JSON and replaces the artifact atomically:
// the data goes to a temporary file in the same directory which is then
// renamed over the previous version.
func (s *Store) Write(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, tempPrefix+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0640); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	target := s.Path(name)
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("replace %s: %w", target, err)
	}
	return nil
}

// Read returns the raw content of an artifact.
func (s *Store) Read(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.ReadFile(s.Path(name))
}

// ReadSnapshot reads every snapshot artifact. Missing, unreadable or
// corrupted artifacts are logged, left out of the snapshot and reported in
// the returned list.
func (s *Store) ReadSnapshot() (Snapshot, []string) {
	snap := make(Snapshot, len(SnapshotArtifacts))
	var missing []string

	for _, name := range SnapshotArtifacts {
		data, err := s.Read(name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			s.logger.Warn("Artifact missing from snapshot", zap.String("file", s.Path(name)))
			missing = append(missing, name)
			continue
		case err != nil:
			s.logger.Warn("Failed to read artifact",
				zap.String("file", s.Path(name)),
				zap.Error(err))
			missing = append(missing, name)
			continue
		}

		if !json.Valid(data) {
			s.logger.Warn("Artifact is not valid JSON, skipping", zap.String("file", s.Path(name)))
			missing = append(missing, name)
			continue
		}
		snap[name] = json.RawMessage(data)
	}

	return snap, missing
}

// removeStaleTemps deletes temporary files left by interrupted writes.
func (s *Store) removeStaleTemps() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to remove stale temp file",
				zap.String("file", path),
				zap.Error(err))
		}
	}
}
