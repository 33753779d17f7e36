// Package compare runs several splitter configurations against the same
// document concurrently.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/chunkdown/internal/chunkdown"
	"github.com/dgallion1/chunkdown/internal/splitter"
)

// Run is one configuration to try.
type Run struct {
	Name    string
	Options splitter.Options
}

// Result is the outcome of one Run. A split failure is reported in Error and
// does not affect the other runs.
type Result struct {
	Name       string            `json:"name"`
	Kind       splitter.Kind     `json:"kind"`
	Chunks     []chunkdown.Chunk `json:"chunks"`
	DurationUs int64             `json:"duration_us"`
	Error      string            `json:"error,omitempty"`
}

// Runner executes comparisons with bounded concurrency.
type Runner struct {
	limit int
	stats *Stats
	log   *slog.Logger
}

// NewRunner creates a runner that executes at most limit splits at once.
// stats may be nil.
func NewRunner(limit int, stats *Stats, log *slog.Logger) *Runner {
	if limit <= 0 {
		limit = 4
	}
	return &Runner{limit: limit, stats: stats, log: log}
}

// Compare splits text with every run. All runs are validated before any
// splitting starts, so a bad configuration fails the whole call. Results are
// returned in run order.
func (r *Runner) Compare(ctx context.Context, text string, runs []Run) ([]Result, error) {
	splitters := make([]splitter.Splitter, len(runs))
	for i, run := range runs {
		s, err := splitter.New(run.Options)
		if err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i, runName(run, i), err)
		}
		splitters[i] = s
	}

	results := make([]Result, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.limit)

	for i, s := range splitters {
		name := runName(runs[i], i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			chunks, err := s.Split(text)
			elapsed := time.Since(start)

			res := Result{
				Name:       name,
				Kind:       s.Kind(),
				Chunks:     chunks,
				DurationUs: elapsed.Microseconds(),
			}
			if err != nil {
				res.Chunks = nil
				res.Error = err.Error()
				r.log.Warn("split failed", "run", name, "kind", s.Kind(), "error", err)
			} else if r.stats != nil {
				r.stats.Record(s.Kind(), elapsed)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}

	r.log.Debug("compare finished", "runs", len(runs), "bytes", len(text))
	return results, nil
}

func runName(run Run, i int) string {
	if run.Name != "" {
		return run.Name
	}
	if run.Options != nil {
		return fmt.Sprintf("%s-%d", run.Options.Kind(), i)
	}
	return fmt.Sprintf("run-%d", i)
}
