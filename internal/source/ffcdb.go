// Package source fetches and caches the raw FCCdb workbook.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/KaramelBytes/ffcdb-cli/internal/config"
	"github.com/KaramelBytes/ffcdb-cli/internal/parser"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
	"github.com/KaramelBytes/ffcdb-cli/internal/utils"
)

// FFCdb is the raw record source: a remote workbook cached on disk.
type FFCdb struct {
	RawPath     string
	CleanedPath string
	URL         string
	Sheet       string

	client *http.Client
	logger *zap.Logger
}

// New builds a source from cfg. A nil client gets one with the configured
// timeout; a nil logger discards output.
func New(cfg *config.Global, client *http.Client, logger *zap.Logger) *FFCdb {
	if client == nil {
		client = &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFCdb{
		RawPath:     cfg.RawPath(),
		CleanedPath: cfg.CleanedPath(),
		URL:         cfg.APIXLURL,
		Sheet:       cfg.DataSheetName,
		client:      client,
		logger:      logger.Named("source"),
	}
}

// IsDownloaded reports whether the raw workbook is cached.
func (s *FFCdb) IsDownloaded() bool { return utils.Exists(s.RawPath) }

// IsCleaned reports whether a cleaned table exists.
func (s *FFCdb) IsCleaned() bool { return utils.Exists(s.CleanedPath) }

// Download fetches the workbook into the cache. A non-2xx response is not
// an error: it returns false and leaves any cached file untouched.
func (s *FFCdb) Download(ctx context.Context) (bool, error) {
	s.logger.Info("downloading raw dataset", zap.String("url", s.URL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		s.logger.Warn("request status code is not OK", zap.Int("status", resp.StatusCode))
		return false, nil
	}
	n, err := utils.SafeWriteReader(s.RawPath, resp.Body)
	if err != nil {
		return false, fmt.Errorf("save raw dataset: %w", err)
	}
	s.logger.Info("raw dataset written", zap.String("path", s.RawPath), zap.Int64("bytes", n))
	return true, nil
}

// LoadRaw parses the cached workbook. Without a cached file it returns
// ok == false and no error.
func (s *FFCdb) LoadRaw() (*table.Raw, bool, error) {
	if !s.IsDownloaded() {
		return nil, false, nil
	}
	raw, err := parser.ParseFile(s.RawPath, parser.Options{SheetName: s.Sheet})
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", s.RawPath, err)
	}
	s.logger.Debug("raw dataset loaded",
		zap.Int("rows", raw.Len()),
		zap.Int("columns", len(raw.Columns())))
	return raw, true, nil
}
