// Package updater implements unattended agent updates. Once a day the agent
// fetches a version manifest; when it names a newer release, the update
// script is downloaded and started as a detached process, and the agent
// exits so the script can replace it.
package updater

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"

	"github.com/Guliveer/hostscope/internal/config"
)

// ErrHandedOff is returned once the update script has been started. The
// caller must stop and exit with status 0.
var ErrHandedOff = errors.New("update handed off to update script")

// Result classifies the outcome of an update check.
type Result string

const (
	ResultSkipped   Result = "skipped"
	ResultUpToDate  Result = "up_to_date"
	ResultFailed    Result = "failed"
	ResultHandedOff Result = "handed_off"
)

// maxScriptSize bounds the update script download.
const maxScriptSize = 10 << 20

// Manifest is the document served at the manifest URL.
type Manifest struct {
	Version      string `json:"version"`
	UpdateScript string `json:"update_script"`
}

// UnmarshalJSON accepts the version as a JSON string or a JSON number.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Version      json.RawMessage `json:"version"`
		UpdateScript string          `json:"update_script"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.UpdateScript = raw.UpdateScript
	m.Version = ""

	if len(raw.Version) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Version, &s); err == nil {
		m.Version = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Version, &n); err != nil {
		return fmt.Errorf("version is neither a string nor a number: %s", raw.Version)
	}
	m.Version = n.String()
	return nil
}

// Validate checks that both fields are present and the script URL is http(s).
func (m Manifest) Validate() error {
	if m.Version == "" {
		return errors.New("manifest has no version")
	}
	if m.UpdateScript == "" {
		return errors.New("manifest has no update_script")
	}
	u, err := url.Parse(m.UpdateScript)
	if err != nil {
		return fmt.Errorf("invalid update_script URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("update_script must be an http(s) URL, got %q", m.UpdateScript)
	}
	return nil
}

// Launcher starts the downloaded script without waiting for it.
type Launcher func(scriptPath string) error

// Updater checks the manifest and hands off to the update script.
type Updater struct {
	currentVersion string
	config         config.UpdateConfig
	logger         *zap.Logger
	httpClient     *http.Client
	launch         Launcher
	userAgent      string
}

// New creates a new Updater instance.
func New(currentVersion string, cfg config.UpdateConfig, logger *zap.Logger) *Updater {
	return &Updater{
		currentVersion: currentVersion,
		config:         cfg,
		logger:         logger.Named("updater"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout.Duration,
		},
		launch:    launchDetached,
		userAgent: "hostscope-agent/" + currentVersion,
	}
}

// Enabled reports whether update checks run. Dev builds never update.
func (u *Updater) Enabled() bool {
	return u.config.Enabled && u.config.ManifestURL != "" && u.currentVersion != "dev"
}

// CheckAndUpdate runs one update check. Failures are logged and reported as
// ResultFailed with a nil error; the only error returned is ErrHandedOff.
func (u *Updater) CheckAndUpdate(ctx context.Context) (Result, error) {
	if !u.Enabled() {
		return ResultSkipped, nil
	}

	manifest, err := u.fetchManifest(ctx)
	if err != nil {
		u.logger.Warn("failed to check for updates", zap.Error(err))
		return ResultFailed, nil
	}

	if !IsNewer(manifest.Version, u.currentVersion) {
		u.logger.Debug("already up to date",
			zap.String("current", u.currentVersion),
			zap.String("latest", manifest.Version),
		)
		return ResultUpToDate, nil
	}

	u.logger.Info("new version available",
		zap.String("current", u.currentVersion),
		zap.String("latest", manifest.Version),
	)

	if err := u.downloadScript(ctx, manifest.UpdateScript, u.config.ScriptPath); err != nil {
		u.logger.Error("update download failed", zap.Error(err))
		return ResultFailed, nil
	}
	if err := u.launch(u.config.ScriptPath); err != nil {
		u.logger.Error("failed to start update script",
			zap.String("script", u.config.ScriptPath),
			zap.Error(err))
		return ResultFailed, nil
	}

	u.logger.Info("update script started, handing off",
		zap.String("version", manifest.Version),
		zap.String("script", u.config.ScriptPath),
	)
	return ResultHandedOff, ErrHandedOff
}

func (u *Updater) fetchManifest(ctx context.Context) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.config.ManifestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", u.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest server returned status %d", resp.StatusCode)
	}

	var manifest Manifest
	if err := json.NewDecoder(resp.Body).Decode(&manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

// downloadScript replaces destPath with the script at url, mode 0700.
func (u *Updater) downloadScript(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", u.userAgent)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	// A stale file or a planted symlink at the fixed path is never reused.
	if err := os.Remove(destPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove old script: %w", err)
	}
	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0700)
	if err != nil {
		return err
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, maxScriptSize+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxScriptSize {
		err = fmt.Errorf("update script exceeds %d bytes", maxScriptSize)
	}
	if err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}

// IsNewer reports whether latest is a newer version than current. Semantic
// versions (with or without a "v" prefix) are compared with semver; other
// dotted numeric versions component by component. Versions that cannot be
// compared are never newer.
func IsNewer(latest, current string) bool {
	l, c := canonical(latest), canonical(current)
	if semver.IsValid(l) && semver.IsValid(c) {
		return semver.Compare(l, c) > 0
	}

	lp, ok := numericParts(latest)
	if !ok {
		return false
	}
	cp, ok := numericParts(current)
	if !ok {
		return false
	}
	for i := 0; i < len(lp) || i < len(cp); i++ {
		var a, b int
		if i < len(lp) {
			a = lp[i]
		}
		if i < len(cp) {
			b = cp[i]
		}
		if a != b {
			return a > b
		}
	}
	return false
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// numericParts splits "v1.2.3.4" into its integer components.
func numericParts(v string) ([]int, bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return nil, false
	}
	fields := strings.Split(v, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return nil, false
		}
		parts[i] = n
	}
	return parts, true
}
