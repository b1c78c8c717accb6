package dupefinder

import (
	"context"
	"fmt"
	"log/slog"

	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
	"mvlib/internal/textutil"
)

// Artist similarity counts less than title similarity: different artists
// covering the same song are usually not duplicates of each other.
const (
	artistWeight = 0.4
	titleWeight  = 0.6
)

// Track is one sidecar's identity used for comparison.
type Track struct {
	Path   string
	Artist string
	Title  string

	artistPrint *textutil.Fingerprint
	titlePrint  *textutil.Fingerprint
}

// Match is a likely duplicate pair with its combined score.
type Match struct {
	A     Track
	B     Track
	Score float64
}

// Option configures the finder.
type Option func(*Finder)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) { f.logger = logging.NewComponentLogger(logger, "dupefinder") }
}

// Finder compares every sidecar pair against a similarity threshold.
type Finder struct {
	threshold float64
	logger    *slog.Logger
}

// New constructs a finder. threshold must be in (0, 1].
func New(threshold float64, opts ...Option) (*Finder, error) {
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v out of range (0, 1]", threshold)
	}
	f := &Finder{threshold: threshold, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Run scans root and returns likely duplicate pairs sorted by scan order.
func (f *Finder) Run(ctx context.Context, root, extension string) ([]Match, error) {
	snap, err := library.Scan(root, extension)
	if err != nil {
		return nil, fmt.Errorf("scan library: %w", err)
	}

	var tracks []Track
	for _, path := range snap.NfoFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := nfo.ReadFile(path)
		if rec == nil || !rec.HasMandatoryFields() {
			f.logger.Warn("skipping sidecar", logging.String(logging.FieldPath, path), logging.Error(err))
			continue
		}
		artist := rec.MainArtist()
		tracks = append(tracks, Track{
			Path:        path,
			Artist:      artist,
			Title:       rec.Title,
			artistPrint: textutil.NewFingerprint(artist),
			titlePrint:  textutil.NewFingerprint(rec.Title),
		})
	}

	var matches []Match
	for i := 0; i < len(tracks); i++ {
		if err := ctx.Err(); err != nil {
			return matches, err
		}
		for j := i + 1; j < len(tracks); j++ {
			score := combinedScore(tracks[i], tracks[j])
			if score >= f.threshold {
				matches = append(matches, Match{A: tracks[i], B: tracks[j], Score: score})
			}
		}
	}
	return matches, nil
}

func combinedScore(a, b Track) float64 {
	artistScore := textutil.CosineSimilarity(a.artistPrint, b.artistPrint)
	titleScore := textutil.CosineSimilarity(a.titlePrint, b.titlePrint)
	return artistScore*artistWeight + titleScore*titleWeight
}
