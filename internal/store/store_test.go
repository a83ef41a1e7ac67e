package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/models"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "artifacts"), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestWrite_Compact(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Write(ServicesFile, models.ServiceInventory{
		Services:     []models.ServiceRecord{{Name: "nginx", Description: "A <fast> server"}},
		Availability: models.Available(),
	}))

	data, err := os.ReadFile(s.Path(ServicesFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "\n")
	assert.Contains(t, string(data), `"name":"nginx"`)

	info, err := os.Stat(s.Path(ServicesFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())
}

func TestWrite_Overwrites(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Write(FirewallFile, map[string]string{"v": "1"}))
	require.NoError(t, s.Write(FirewallFile, map[string]string{"v": "2"}))

	data, err := s.Read(FirewallFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"2"}`, string(data))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestWrite_Unmarshalable(t *testing.T) {
	s := newStore(t)
	assert.Error(t, s.Write(ServicesFile, map[string]interface{}{"ch": make(chan int)}))

	_, err := s.Read(ServicesFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadSnapshot_RoundTrip(t *testing.T) {
	s := newStore(t)

	artifacts := map[string]interface{}{
		SystemInfoFile: models.SystemInfo{
			Hostname:     "web-01",
			HardwareInfo: models.NewHardwareInventory(),
			Users:        models.NewAccountSummary(),
			LoginHistory: []models.LoginRecord{{User: "alice", LogoutTime: models.StillLoggedIn, Duration: models.DurationNA}},
		},
		ResourceUsageFile: models.ResourceSample{Network: models.NetworkSample{PublicIP: "203.0.113.7"}},
		ServicesFile:      models.ServiceInventory{Services: []models.ServiceRecord{}},
		FirewallFile: models.FirewallState{
			Nftables:       models.FirewallBackend{Rules: models.NftRuleset{Text: "table inet filter {\n}"}},
			ActiveFirewall: models.FirewallNftables,
		},
	}
	written := map[string][]byte{}
	for name, v := range artifacts {
		require.NoError(t, s.Write(name, v))
		data, err := os.ReadFile(s.Path(name))
		require.NoError(t, err)
		written[name] = data
	}

	snap, missing := s.ReadSnapshot()
	assert.Empty(t, missing)
	require.Len(t, snap, len(SnapshotArtifacts))

	body, err := json.Marshal(snap)
	require.NoError(t, err)

	var received map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &received))
	for name, data := range written {
		assert.Equal(t, string(data), string(received[name]), name)
	}
}

func TestReadSnapshot_MissingAndCorrupt(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Write(ResourceUsageFile, models.ResourceSample{}))
	require.NoError(t, os.WriteFile(s.Path(ServicesFile), []byte("{truncated"), 0640))

	snap, missing := s.ReadSnapshot()
	assert.Len(t, snap, 1)
	assert.Contains(t, snap, ResourceUsageFile)
	assert.ElementsMatch(t, []string{SystemInfoFile, ServicesFile, FirewallFile}, missing)
}

func TestNew_RemovesStaleTemps(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, tempPrefix+"services.json-123")
	require.NoError(t, os.WriteFile(stale, []byte("{"), 0640))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ServicesFile), []byte("{}"), 0640))

	_, err := New(dir, zap.NewNop())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(dir, ServicesFile))
	assert.NoError(t, err)
}
