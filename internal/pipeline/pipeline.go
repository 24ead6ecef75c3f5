package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/ffcdb-cli/internal/extract"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

var (
	// ErrUnknownDependency is returned when an extractor requires a field
	// no other extractor provides.
	ErrUnknownDependency = errors.New("unknown dependency")
	// ErrDependencyCycle is returned when extractor requirements form a cycle.
	ErrDependencyCycle = errors.New("dependency cycle")
	// ErrDuplicateProvider is returned when two extractors declare the same field.
	ErrDuplicateProvider = errors.New("field provided twice")
	// ErrIncompleteOutput is returned when an extractor skips a declared field.
	ErrIncompleteOutput = errors.New("extractor did not write a declared field")
)

// Pipeline runs extractors in dependency levels. Extractors within a level
// run concurrently against a sealed snapshot of the earlier levels' output.
type Pipeline struct {
	logger     *zap.Logger
	extractors []extract.Extractor
	levels     [][]int
}

// New validates the declared dependencies and builds the schedule.
func New(logger *zap.Logger, extractors ...extract.Extractor) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	levels, err := schedule(extractors)
	if err != nil {
		return nil, err
	}
	return &Pipeline{logger: logger, extractors: extractors, levels: levels}, nil
}

// Levels returns extractor names grouped by execution level.
func (p *Pipeline) Levels() [][]string {
	out := make([][]string, len(p.levels))
	for i, level := range p.levels {
		for _, idx := range level {
			out[i] = append(out[i], p.extractors[idx].Name())
		}
	}
	return out
}

func schedule(extractors []extract.Extractor) ([][]int, error) {
	provider := map[string]int{}
	for i, e := range extractors {
		for _, f := range e.Provides() {
			if j, ok := provider[f]; ok {
				return nil, fmt.Errorf("%w: %q by %s and %s", ErrDuplicateProvider, f, extractors[j].Name(), e.Name())
			}
			provider[f] = i
		}
	}
	deps := make([][]int, len(extractors))
	for i, e := range extractors {
		for _, f := range e.Requires() {
			j, ok := provider[f]
			if !ok {
				return nil, fmt.Errorf("%w: %s requires %q", ErrUnknownDependency, e.Name(), f)
			}
			deps[i] = append(deps[i], j)
		}
	}

	placed := make([]bool, len(extractors))
	var levels [][]int
	for remaining := len(extractors); remaining > 0; {
		var level []int
		for i := range extractors {
			if placed[i] {
				continue
			}
			ready := true
			for _, j := range deps[i] {
				if !placed[j] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, i)
			}
		}
		if len(level) == 0 {
			var stuck []string
			for i, e := range extractors {
				if !placed[i] {
					stuck = append(stuck, e.Name())
				}
			}
			return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(stuck, ", "))
		}
		// Mark after the scan so a level never depends on itself.
		for _, i := range level {
			placed[i] = true
		}
		remaining -= len(level)
		levels = append(levels, level)
	}
	return levels, nil
}

// Run cleans raw and returns the sealed clean table. Any extractor error
// aborts the run and no table is returned.
func (p *Pipeline) Run(ctx context.Context, raw *table.Raw) (*table.Clean, error) {
	return p.run(ctx, uuid.NewString(), raw)
}

func (p *Pipeline) run(ctx context.Context, runID string, raw *table.Raw) (*table.Clean, error) {
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("validate raw table: %w", err)
	}
	log := p.logger.With(zap.String("run_id", runID))
	log.Info("cleaning started", zap.Int("rows", raw.Len()), zap.Int("raw_columns", len(raw.Columns())))
	start := time.Now()

	clean := table.NewClean(raw.Len())
	for li, level := range p.levels {
		snap := clean.Snapshot()
		outs := make([][]*table.Column, len(level))
		g, gctx := errgroup.WithContext(ctx)
		for j, idx := range level {
			e := p.extractors[idx]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				t0 := time.Now()
				cols, err := e.Extract(raw, snap)
				if err != nil {
					return fmt.Errorf("extractor %s: %w", e.Name(), err)
				}
				if err := checkProvides(e, cols); err != nil {
					return err
				}
				outs[j] = cols
				log.Debug("extractor done",
					zap.String("extractor", e.Name()),
					zap.Int("level", li),
					zap.Int("fields", len(cols)),
					zap.Duration("took", time.Since(t0)))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Error("cleaning failed", zap.Error(err))
			return nil, err
		}
		for j, cols := range outs {
			if err := clean.Add(cols...); err != nil {
				return nil, fmt.Errorf("extractor %s: %w", p.extractors[level[j]].Name(), err)
			}
		}
	}
	clean.Seal()
	log.Info("cleaning finished",
		zap.Int("fields", len(clean.Fields())),
		zap.Duration("took", time.Since(start)))
	return clean, nil
}

func checkProvides(e extract.Extractor, cols []*table.Column) error {
	got := make(map[string]bool, len(cols))
	for _, c := range cols {
		got[c.Name()] = true
	}
	for _, f := range e.Provides() {
		if !got[f] {
			return fmt.Errorf("%w: %s missing %q", ErrIncompleteOutput, e.Name(), f)
		}
	}
	return nil
}
