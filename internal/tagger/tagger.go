package tagger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mvlib/internal/library"
	"mvlib/internal/logging"
	"mvlib/internal/nfo"
	"mvlib/internal/textutil"
)

// Action selects what the pass does with the tag.
type Action int

const (
	ActionAdd Action = iota
	ActionRemove
)

func (a Action) String() string {
	if a == ActionRemove {
		return "remove"
	}
	return "add"
}

// Stats summarizes a tag run.
type Stats struct {
	ArtistsMatched int
	ArtistsMissing int
	FilesUpdated   int
	FilesUnchanged int
	Failed         int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d artists matched, %d missing, %d files updated, %d unchanged, %d failed",
		s.ArtistsMatched, s.ArtistsMissing, s.FilesUpdated, s.FilesUnchanged, s.Failed)
}

// Option configures the tagger.
type Option func(*Tagger)

// WithLogger sets the pass logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tagger) { t.logger = logging.NewComponentLogger(logger, "tagger") }
}

// WithDryRun reports what would change without writing.
func WithDryRun(dryRun bool) Option {
	return func(t *Tagger) { t.dryRun = dryRun }
}

// Tagger applies one tag mutation across selected artists.
type Tagger struct {
	layout library.Layout
	logger *slog.Logger
	dryRun bool
}

// New constructs a tagger.
func New(layout library.Layout, opts ...Option) *Tagger {
	t := &Tagger{layout: layout, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run applies action with tag to every sidecar of every named artist.
// Artist names match their directory via the same normalization the
// importer uses to create them.
func (t *Tagger) Run(ctx context.Context, artists []string, tag string, action Action) (Stats, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Stats{}, errors.New("empty tag")
	}

	var stats Stats
	for _, artist := range artists {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		artist = strings.TrimSpace(artist)
		if artist == "" {
			continue
		}

		dir := t.layout.ArtistDir(artist)
		logger := t.logger.With(logging.String(logging.FieldArtist, artist))
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Warn("artist directory not found", logging.String(logging.FieldPath, dir))
			stats.ArtistsMissing++
			continue
		}
		stats.ArtistsMatched++

		for _, path := range sidecarsIn(dir) {
			t.processFile(logger, path, tag, action, &stats)
		}
	}
	return stats, nil
}

// LoadArtists reads one artist name per line, ignoring blanks and
// #-comments.
func LoadArtists(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artists file: %w", err)
	}
	var artists []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		artists = append(artists, line)
	}
	return artists, nil
}

func sidecarsIn(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == nfo.ArtistFileName {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".nfo") {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}

func (t *Tagger) processFile(logger *slog.Logger, path, tag string, action Action, stats *Stats) {
	logger = logger.With(logging.String(logging.FieldPath, path))

	rec, err := nfo.ReadFile(path)
	if rec == nil {
		logger.Warn("skipping unreadable sidecar", logging.Error(err))
		stats.Failed++
		return
	}

	var changed bool
	switch action {
	case ActionAdd:
		rec.Tags, changed = addTag(rec.Tags, tag)
	case ActionRemove:
		rec.Tags, changed = removeTag(rec.Tags, tag)
	}
	if !changed {
		stats.FilesUnchanged++
		return
	}

	if t.dryRun {
		logger.Info("would update tag", logging.String("tag", tag), logging.String("action", action.String()))
		stats.FilesUpdated++
		return
	}
	if err := nfo.WriteFile(path, rec); err != nil {
		logger.Error("write sidecar failed", logging.Error(err))
		stats.Failed++
		return
	}
	logger.Info("tag updated", logging.String("tag", tag), logging.String("action", action.String()))
	stats.FilesUpdated++
}

// addTag appends tag unless an equivalent one is already present.
func addTag(tags []string, tag string) ([]string, bool) {
	for _, existing := range tags {
		if sameTag(existing, tag) {
			return tags, false
		}
	}
	return append(tags, tag), true
}

// removeTag drops every equivalent of tag.
func removeTag(tags []string, tag string) ([]string, bool) {
	kept := tags[:0]
	removed := false
	for _, existing := range tags {
		if sameTag(existing, tag) {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	return kept, removed
}

// sameTag compares tags through the library normalizer so spelling
// variants of the same tag collapse.
func sameTag(a, b string) bool {
	return textutil.NormalizeToken(a) == textutil.NormalizeToken(b)
}
