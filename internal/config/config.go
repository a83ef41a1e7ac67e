// Package config handles configuration loading from YAML files and environment variables.
// Configuration precedence: CLI flags > environment variables > config file >
// embedded config > defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/hostscope/internal/parser"
)

// Environment variables read by the agent.
const (
	EnvServerURL = "HOSTSCOPE_SERVER_URL"
	EnvToken     = "HOSTSCOPE_TOKEN"
	EnvLogLevel  = "HOSTSCOPE_LOG_LEVEL"
	EnvStoreDir  = "HOSTSCOPE_STORE_DIR"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all agent configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Collection CollectionConfig `yaml:"collection"`
	Firewall   FirewallConfig   `yaml:"firewall"`
	Store      StoreConfig      `yaml:"store"`
	Logging    LoggingConfig    `yaml:"logging"`
	Update     UpdateConfig     `yaml:"update"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ServerConfig holds collector connection settings.
type ServerConfig struct {
	URL          string   `yaml:"url"`
	MachineToken string   `yaml:"machine_token"`
	Gzip         bool     `yaml:"gzip"`
	Timeout      Duration `yaml:"timeout"`
}

// CollectionConfig holds collection settings.
type CollectionConfig struct {
	Interval        Duration `yaml:"interval"`
	CommandTimeout  Duration `yaml:"command_timeout"`
	PasswdPath      string   `yaml:"passwd_path"`
	DisabledShells  []string `yaml:"disabled_shells"`
	PublicIPURL     string   `yaml:"public_ip_url"`
	PublicIPTimeout Duration `yaml:"public_ip_timeout"`
}

// FirewallConfig holds firewall inspection settings.
type FirewallConfig struct {
	// IptablesLayout is auto, legacy or nft.
	IptablesLayout string `yaml:"iptables_layout"`
}

// StoreConfig holds artifact store settings.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// UpdateConfig holds self-update settings.
type UpdateConfig struct {
	Enabled     bool     `yaml:"enabled"`
	ManifestURL string   `yaml:"manifest_url"`
	ScriptPath  string   `yaml:"script_path"`
	Timeout     Duration `yaml:"timeout"`
}

// MetricsConfig holds agent self-metrics settings.
type MetricsConfig struct {
	// Textfile is a node-exporter textfile collector path; empty disables export.
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: Duration{10 * time.Second},
		},
		Collection: CollectionConfig{
			Interval:        Duration{5 * time.Minute},
			PasswdPath:      "/etc/passwd",
			DisabledShells:  append([]string(nil), parser.DefaultDisabledShells...),
			PublicIPURL:     "https://api.ipify.org",
			PublicIPTimeout: Duration{5 * time.Second},
		},
		Firewall: FirewallConfig{
			IptablesLayout: string(parser.IptablesLayoutAuto),
		},
		Store: StoreConfig{
			Dir: "/var/lib/hostscope",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Update: UpdateConfig{
			ScriptPath: "/tmp/hostscope-update.sh",
			Timeout:    Duration{30 * time.Second},
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	URL   string
	Token string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	candidates := configSearchPaths()
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value → use that path ("" means no external file)
//
// An explicitly named file that does not exist is an error.
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config (lowest priority data layer)
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	var filePath string
	explicit := len(configPath) > 0
	if explicit {
		filePath = configPath[0] // caller-supplied (may be "")
	} else {
		filePath = Locate() // auto-discover
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case explicit || !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Layer 3: environment variables
	applyEnvOverrides(cfg)

	// Layer 4: CLI flags (highest priority)
	if cli.URL != "" {
		cfg.Server.URL = cli.URL
	}
	if cli.Token != "" {
		cfg.Server.MachineToken = cli.Token
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if url := os.Getenv(EnvServerURL); url != "" {
		cfg.Server.URL = url
	}
	if token := os.Getenv(EnvToken); token != "" {
		cfg.Server.MachineToken = token
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if dir := os.Getenv(EnvStoreDir); dir != "" {
		cfg.Store.Dir = dir
	}
}

// Validate checks that the configuration is valid for production use.
// The server URL must use HTTPS unless it points at the local host.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	if c.Server.MachineToken == "" {
		return fmt.Errorf("machine token is required")
	}
	if err := requireHTTPS(c.Server.URL); err != nil {
		return fmt.Errorf("server URL: %w", err)
	}
	if c.Server.Timeout.Duration <= 0 {
		return fmt.Errorf("server timeout must be positive")
	}
	if c.Collection.Interval.Duration <= 0 {
		return fmt.Errorf("collection interval must be positive")
	}
	if c.Collection.CommandTimeout.Duration < 0 {
		return fmt.Errorf("command timeout must not be negative")
	}
	if c.Collection.PasswdPath == "" {
		return fmt.Errorf("passwd path is required")
	}
	if !parser.ValidIptablesLayout(c.Firewall.IptablesLayout) {
		return fmt.Errorf("unknown iptables layout %q (want auto, legacy or nft)", c.Firewall.IptablesLayout)
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store directory is required")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}
	if c.Update.Enabled {
		if c.Update.ManifestURL == "" {
			return fmt.Errorf("update manifest URL is required when updates are enabled")
		}
		u, err := url.Parse(c.Update.ManifestURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("update manifest URL must be an http(s) URL (got: %s)", c.Update.ManifestURL)
		}
		if c.Update.ScriptPath == "" {
			return fmt.Errorf("update script path is required when updates are enabled")
		}
	}
	return nil
}

func requireHTTPS(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	if u.Scheme == "https" {
		return nil
	}
	if u.Scheme == "http" && isLocalHost(u.Hostname()) {
		// Allow plain HTTP for local development
		return nil
	}
	return fmt.Errorf("must use HTTPS (got: %s)", raw)
}

func isLocalHost(host string) bool {
	return host == "localhost" || host == "::1" || strings.HasPrefix(host, "127.")
}
