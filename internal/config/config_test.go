package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("server:\n  url: \"https://embedded.example.com\"\n  machine_token: \"embedded_token\"")
	t.Setenv(EnvServerURL, "https://env.example.com")
	cli := CLIOverrides{URL: "https://cli.example.com", Token: "cli_token"}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "https://cli.example.com" {
		t.Errorf("URL = %q, want CLI override", cfg.Server.URL)
	}
	if cfg.Server.MachineToken != "cli_token" {
		t.Errorf("Token = %q, want CLI override", cfg.Server.MachineToken)
	}
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	embedded := []byte("server:\n  url: \"https://embedded.example.com\"\n  machine_token: \"embedded_token\"")
	t.Setenv(EnvServerURL, "https://env.example.com")
	t.Setenv(EnvStoreDir, "/srv/hostscope")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.URL != "https://env.example.com" {
		t.Errorf("URL = %q, want env override", cfg.Server.URL)
	}
	if cfg.Server.MachineToken != "embedded_token" {
		t.Errorf("Token = %q, want embedded value", cfg.Server.MachineToken)
	}
	if cfg.Store.Dir != "/srv/hostscope" {
		t.Errorf("Store.Dir = %q, want env override", cfg.Store.Dir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want env override", cfg.Logging.Level)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	embedded := []byte("collection:\n  interval: 1m\nstore:\n  dir: /embedded\n")
	path := filepath.Join(t.TempDir(), "agent.yaml")
	file := "collection:\n  interval: 30s\n  command_timeout: 20s\n  disabled_shells: [/bin/false]\nfirewall:\n  iptables_layout: nft\n"
	if err := os.WriteFile(path, []byte(file), 0640); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLayered(CLIOverrides{}, embedded, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection.Interval.Duration != 30*time.Second {
		t.Errorf("Interval = %v, want 30s from file", cfg.Collection.Interval.Duration)
	}
	if cfg.Collection.CommandTimeout.Duration != 20*time.Second {
		t.Errorf("CommandTimeout = %v, want 20s", cfg.Collection.CommandTimeout.Duration)
	}
	if len(cfg.Collection.DisabledShells) != 1 || cfg.Collection.DisabledShells[0] != "/bin/false" {
		t.Errorf("DisabledShells = %v, want [/bin/false]", cfg.Collection.DisabledShells)
	}
	if cfg.Firewall.IptablesLayout != "nft" {
		t.Errorf("IptablesLayout = %q, want nft", cfg.Firewall.IptablesLayout)
	}
	if cfg.Store.Dir != "/embedded" {
		t.Errorf("Store.Dir = %q, want embedded value", cfg.Store.Dir)
	}
}

func TestLoadLayered_MissingExplicitFile(t *testing.T) {
	_, err := LoadLayered(CLIOverrides{}, nil, filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadLayered_BadDuration(t *testing.T) {
	_, err := LoadLayered(CLIOverrides{}, []byte("collection:\n  interval: soon\n"), "")
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("err = %v, want invalid duration", err)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection.Interval.Duration != 5*time.Minute {
		t.Errorf("Interval = %v, want 5m default", cfg.Collection.Interval.Duration)
	}
	if cfg.Collection.CommandTimeout.Duration != 0 {
		t.Errorf("CommandTimeout = %v, want none", cfg.Collection.CommandTimeout.Duration)
	}
	if cfg.Update.ScriptPath != "/tmp/hostscope-update.sh" {
		t.Errorf("ScriptPath = %q", cfg.Update.ScriptPath)
	}
	if cfg.Update.Timeout.Duration != 30*time.Second {
		t.Errorf("Update.Timeout = %v, want 30s", cfg.Update.Timeout.Duration)
	}
}

func TestWriteConfig_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.URL = "https://test.example.com"

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadLayered(CLIOverrides{}, nil, path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.URL != cfg.Server.URL {
		t.Errorf("URL = %q after round trip", loaded.Server.URL)
	}
	if loaded.Collection.PublicIPTimeout != cfg.Collection.PublicIPTimeout {
		t.Errorf("PublicIPTimeout = %v after round trip", loaded.Collection.PublicIPTimeout)
	}
}

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Server.URL = "https://collector.example.com/api/ingest"
	cfg.Server.MachineToken = "token"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"localhost http", func(c *Config) { c.Server.URL = "http://localhost:8080/ingest" }, ""},
		{"loopback http", func(c *Config) { c.Server.URL = "http://127.0.0.1:8080" }, ""},
		{"remote http", func(c *Config) { c.Server.URL = "http://collector.example.com" }, "HTTPS"},
		{"localhost in path", func(c *Config) { c.Server.URL = "http://evil.example.com/localhost" }, "HTTPS"},
		{"no url", func(c *Config) { c.Server.URL = "" }, "server URL is required"},
		{"no token", func(c *Config) { c.Server.MachineToken = "" }, "machine token"},
		{"zero interval", func(c *Config) { c.Collection.Interval = Duration{} }, "interval"},
		{"negative command timeout", func(c *Config) { c.Collection.CommandTimeout = Duration{-time.Second} }, "command timeout"},
		{"bad layout", func(c *Config) { c.Firewall.IptablesLayout = "v2" }, "iptables layout"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging level"},
		{"update without manifest", func(c *Config) { c.Update.Enabled = true }, "manifest URL is required"},
		{"update with ftp manifest", func(c *Config) {
			c.Update.Enabled = true
			c.Update.ManifestURL = "ftp://example.com/manifest.json"
		}, "http(s)"},
		{"update enabled", func(c *Config) {
			c.Update.Enabled = true
			c.Update.ManifestURL = "https://example.com/manifest.json"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
