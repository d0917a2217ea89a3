package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
)

// ErrDownloadFailed is returned when the source of a mirror responds with a non-2xx status.
var ErrDownloadFailed = errors.New("storage: download failed")

const defaultContentType = "application/octet-stream"

// Mirror copies remote files into durable storage. The file is staged in a
// scratch file so large downloads never sit in memory.
type Mirror struct {
	store      Storage
	httpClient *http.Client
	logger     *slog.Logger
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithDownloadClient sets the HTTP client used to fetch source files.
func WithDownloadClient(c *http.Client) MirrorOption {
	return func(m *Mirror) {
		m.httpClient = c
	}
}

// NewMirror creates a Mirror writing into store.
func NewMirror(store Storage, logger *slog.Logger, opts ...MirrorOption) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Mirror{
		store:      store,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mirror downloads sourceURL, uploads it under key and returns the durable URL.
func (m *Mirror) Mirror(ctx context.Context, key, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("storage: create download request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage: download: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrDownloadFailed, resp.StatusCode)
	}

	name := strings.TrimSuffix(path.Base(key), path.Ext(key))
	tmpPath, err := m.store.SaveTemp(ctx, name, resp.Body)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := m.store.CleanupTemp(context.WithoutCancel(ctx), []string{tmpPath}); err != nil {
			m.logger.Warn("failed to clean up mirror scratch file",
				slog.String("path", tmpPath),
				slog.String("error", err.Error()),
			)
		}
	}()

	f, err := m.store.LoadTemp(ctx, tmpPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	url, err := m.store.Upload(ctx, key, contentType, f)
	if err != nil {
		return "", err
	}

	m.logger.Info("mirrored remote file",
		slog.String("key", key),
		slog.String("url", url),
	)
	return url, nil
}
