// Package sender transmits snapshots to the collector. A snapshot is POSTed
// once as a JSON object keyed by artifact name; failures are returned to the
// caller and never retried or queued.
package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/Guliveer/hostscope/internal/config"
	"github.com/Guliveer/hostscope/internal/store"
)

// ErrEmptySnapshot is returned when there is nothing to send.
var ErrEmptySnapshot = errors.New("snapshot is empty")

// maxErrorBody bounds how much of an error response is kept for logging.
const maxErrorBody = 512

// Sender posts snapshots to the configured server URL.
type Sender struct {
	client    *http.Client
	cfg       *config.Config
	userAgent string
	logger    *zap.Logger
}

// New creates a new Sender with the given configuration and agent version.
func New(cfg *config.Config, version string, logger *zap.Logger) *Sender {
	return &Sender{
		client: &http.Client{
			Timeout: cfg.Server.Timeout.Duration,
		},
		cfg:       cfg,
		userAgent: "hostscope-agent/" + version,
		logger:    logger,
	}
}

// Send POSTs the snapshot. An empty snapshot is not sent.
func (s *Sender) Send(ctx context.Context, snap store.Snapshot) error {
	if len(snap) == 0 {
		return ErrEmptySnapshot
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	body := data
	if s.cfg.Server.Gzip {
		if body, err = compress(data); err != nil {
			return err
		}
	}

	requestID := uuid.NewString()
	if err := s.doSend(ctx, body, requestID); err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}

	s.logger.Debug("Snapshot sent",
		zap.String("request_id", requestID),
		zap.Int("artifacts", len(snap)),
		zap.Int("bytes", len(body)))
	return nil
}

// doSend performs a single HTTP POST to the server.
func (s *Sender) doSend(ctx context.Context, body []byte, requestID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Server.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.Server.MachineToken)
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if s.cfg.Server.Gzip {
		req.Header.Set("Content-Encoding", "gzip")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("finalize gzip compression: %w", err)
	}
	return buf.Bytes(), nil
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Body)
}
