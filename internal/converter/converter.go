package converter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"mvlib/internal/fileutil"
	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
)

// Stats summarizes a convert run.
type Stats struct {
	Processed int
	Converted int
	Unchanged int
	Failed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d converted, %d unchanged, %d failed",
		s.Processed, s.Converted, s.Unchanged, s.Failed)
}

// Option configures the converter.
type Option func(*Converter)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) { c.logger = logging.NewComponentLogger(logger, "converter") }
}

// WithBackup keeps the original next to the converted file as .nfo.bak.
func WithBackup(backup bool) Option {
	return func(c *Converter) { c.backup = backup }
}

// WithDryRun reports what would change without writing.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// Converter rewrites legacy sidecars in the canonical schema.
type Converter struct {
	logger *slog.Logger
	backup bool
	dryRun bool
}

// New constructs a converter.
func New(opts ...Option) *Converter {
	c := &Converter{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run converts every sidecar under root. Files already canonical are
// counted as unchanged; unparseable files are logged and skipped.
func (c *Converter) Run(ctx context.Context, root, extension string) (Stats, error) {
	snap, err := library.Scan(root, extension)
	if err != nil {
		return Stats{}, fmt.Errorf("scan library: %w", err)
	}

	var stats Stats
	for _, path := range snap.NfoFiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		c.convertFile(path, &stats)
		stats.Processed++
	}
	return stats, nil
}

func (c *Converter) convertFile(path string, stats *Stats) {
	logger := c.logger.With(logging.String(logging.FieldPath, path))

	original, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("skipping unreadable file", logging.Error(err))
		stats.Failed++
		return
	}

	rec, err := nfo.Decode(original, path)
	if rec == nil {
		logger.Warn("skipping undecodable sidecar", logging.Error(err))
		stats.Failed++
		return
	}

	canonical := nfo.Encode(rec)
	if bytes.Equal(original, canonical) {
		stats.Unchanged++
		return
	}

	if c.dryRun {
		logger.Info("would convert")
		stats.Converted++
		return
	}

	if c.backup {
		if err := fileutil.CopyFile(path, path+".bak"); err != nil {
			logger.Error("backup failed", logging.Error(err))
			stats.Failed++
			return
		}
	}
	if err := nfo.WriteFile(path, rec); err != nil {
		logger.Error("write sidecar failed", logging.Error(err))
		stats.Failed++
		return
	}
	logger.Info("converted")
	stats.Converted++
}
