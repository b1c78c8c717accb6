package cleaner

import (
	"context"
	"fmt"
	"log/slog"

	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
)

// Stats summarizes a clean run.
type Stats struct {
	Processed      int
	Updated        int
	EntriesRemoved int
	EntriesChanged int
	Failed         int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d updated, %d entries removed, %d entries changed, %d failed",
		s.Processed, s.Updated, s.EntriesRemoved, s.EntriesChanged, s.Failed)
}

// Option configures the cleaner.
type Option func(*Cleaner)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cleaner) { c.logger = logging.NewComponentLogger(logger, "cleaner") }
}

// WithDryRun reports what would change without writing.
func WithDryRun(dryRun bool) Option {
	return func(c *Cleaner) { c.dryRun = dryRun }
}

// Cleaner walks the library and deduplicates every sidecar history.
type Cleaner struct {
	logger *slog.Logger
	dryRun bool
}

// New constructs a cleaner.
func New(opts ...Option) *Cleaner {
	c := &Cleaner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run cleans every sidecar under root. Unparseable files are logged and
// skipped.
func (c *Cleaner) Run(ctx context.Context, root, extension string) (Stats, error) {
	snap, err := library.Scan(root, extension)
	if err != nil {
		return Stats{}, fmt.Errorf("scan library: %w", err)
	}

	var stats Stats
	for _, path := range snap.NfoFiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		c.cleanFile(path, &stats)
		stats.Processed++
	}
	return stats, nil
}

func (c *Cleaner) cleanFile(path string, stats *Stats) {
	logger := c.logger.With(logging.String(logging.FieldPath, path))

	rec, err := nfo.ReadFile(path)
	if rec == nil {
		logger.Warn("skipping unreadable sidecar", logging.Error(err))
		stats.Failed++
		return
	}

	removed, changed := rec.Sources.Dedup()
	if removed == 0 && changed == 0 {
		return
	}
	stats.EntriesRemoved += removed
	stats.EntriesChanged += changed

	if c.dryRun {
		logger.Info("would clean", logging.Int("removed", removed), logging.Int("changed", changed))
		stats.Updated++
		return
	}

	if err := nfo.WriteFile(path, rec); err != nil {
		logger.Error("write sidecar failed", logging.Error(err))
		stats.Failed++
		return
	}
	logger.Info("cleaned", logging.Int("removed", removed), logging.Int("changed", changed))
	stats.Updated++
}
