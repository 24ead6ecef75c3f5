package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// RawSource supplies the raw table. ok is false when no dataset is
// available, which skips cleaning without an error.
type RawSource interface {
	LoadRaw() (raw *table.Raw, ok bool, err error)
}

// Result describes one CleanTo call.
type Result struct {
	RunID    string
	Path     string
	Rows     int
	Fields   []string
	Skipped  bool
	Started  time.Time
	Duration time.Duration
	Clean    *table.Clean
}

// CleanTo loads the raw table from src, runs the pipeline and persists the
// clean table at path. Nothing is written when any step fails.
func (p *Pipeline) CleanTo(ctx context.Context, src RawSource, path string) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Path: path, Started: time.Now()}
	raw, ok, err := src.LoadRaw()
	if err != nil {
		return nil, fmt.Errorf("load raw table: %w", err)
	}
	if !ok {
		p.logger.Warn("raw dataset not available, skipping cleaning", zap.String("run_id", res.RunID))
		res.Skipped = true
		return res, nil
	}
	clean, err := p.run(ctx, res.RunID, raw)
	if err != nil {
		return nil, err
	}
	if err := table.SaveFile(path, clean); err != nil {
		return nil, fmt.Errorf("save clean table: %w", err)
	}
	res.Rows = clean.Len()
	res.Fields = clean.Fields()
	res.Clean = clean
	res.Duration = time.Since(res.Started)
	p.logger.Info("clean table written", zap.String("run_id", res.RunID), zap.String("path", path))
	return res, nil
}
