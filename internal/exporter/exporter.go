package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
)

// Header is the column order of every export.
var Header = []string{
	"year", "artist", "title", "album", "label",
	"genre", "director", "tag", "youtube_url",
}

// Stats summarizes an export run.
type Stats struct {
	Processed int
	Exported  int
	Skipped   int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d processed, %d exported, %d skipped", s.Processed, s.Exported, s.Skipped)
}

// Option configures the exporter.
type Option func(*Exporter)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logging.NewComponentLogger(logger, "exporter") }
}

// Exporter writes the library metadata as CSV.
type Exporter struct {
	logger *slog.Logger
}

// New constructs an exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run exports every sidecar under root to w. Records missing artist or
// title are skipped with a warning, as are unparseable files.
func (e *Exporter) Run(ctx context.Context, root, extension string, w io.Writer) (Stats, error) {
	snap, err := library.Scan(root, extension)
	if err != nil {
		return Stats{}, fmt.Errorf("scan library: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return Stats{}, fmt.Errorf("write csv header: %w", err)
	}

	var stats Stats
	for _, path := range snap.NfoFiles {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Processed++

		logger := e.logger.With(logging.String(logging.FieldPath, path))
		rec, err := nfo.ReadFile(path)
		if rec == nil {
			logger.Warn("skipping unreadable sidecar", logging.Error(err))
			stats.Skipped++
			continue
		}
		if !rec.HasMandatoryFields() {
			logger.Warn("skipping sidecar missing artist or title")
			stats.Skipped++
			continue
		}

		if err := writer.Write(row(rec)); err != nil {
			return stats, fmt.Errorf("write csv row: %w", err)
		}
		stats.Exported++
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, fmt.Errorf("flush csv: %w", err)
	}
	return stats, nil
}

func row(rec *nfo.Record) []string {
	url, _ := rec.Sources.ResolveCurrent()
	return []string{
		rec.Year,
		rec.MainArtist(),
		rec.Title,
		rec.Album,
		rec.Label,
		first(rec.Genres),
		first(rec.Directors),
		strings.Join(rec.Tags, ", "),
		url,
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
