package nfo

import (
	"os"
	"strings"
	"time"

	"mvlib/internal/sources"
)

// UnknownArtist is substituted when an import row carries no usable artist.
const UnknownArtist = "Unknown Artist"

// Record is the in-memory representation of one music video's metadata.
// Identity is positional: the record lives next to a video file sharing
// its base name, inside an artist directory.
type Record struct {
	Title string
	Album string
	Label string
	// Year is an opaque string at this layer. Producers disagree on
	// validation; if wanted it belongs to the import-row layer.
	Year string

	// Artists preserves credit order; the first entry is the main artist.
	Artists []string
	// Directors, Genres, and Tags drop empty values; order carries no
	// meaning.
	Directors []string
	Genres    []string
	Tags      []string

	Sources sources.History
}

// FromImportRow builds a record from canonical row keys (title, album,
// label, year, artist, director, genre, tag). Header aliasing is the
// caller's job. Multi-valued fields split on comma or semicolon.
func FromImportRow(row map[string]string) *Record {
	rec := &Record{
		Title:     strings.TrimSpace(row["title"]),
		Album:     strings.TrimSpace(row["album"]),
		Label:     strings.TrimSpace(row["label"]),
		Year:      strings.TrimSpace(row["year"]),
		Artists:   SplitList(row["artist"]),
		Directors: SplitList(row["director"]),
		Genres:    SplitList(row["genre"]),
		Tags:      SplitList(row["tag"]),
	}
	if len(rec.Artists) == 0 {
		rec.Artists = []string{UnknownArtist}
	}
	return rec
}

// MainArtist returns the first credited artist.
func (r *Record) MainArtist() string {
	if len(r.Artists) == 0 {
		return UnknownArtist
	}
	return r.Artists[0]
}

// RecordAttempt appends a provenance entry for a download attempt,
// stamped with the current UTC time at second precision (the on-disk
// format keeps seconds).
func (r *Record) RecordAttempt(url string, outcome sources.Outcome, discovery sources.Discovery, channel string) {
	r.Sources.Append(sources.Entry{
		URL:       strings.TrimSpace(url),
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Outcome:   outcome,
		Discovery: discovery,
		Channel:   strings.TrimSpace(channel),
		Index:     sources.NoIndex,
	})
}

// NeedsRedownload reports whether the video should be fetched again:
// true iff the file at videoPath exists, candidateURL is non-empty, and
// the history resolves to a different URL. Every batch driver routes its
// re-fetch decision through here.
func (r *Record) NeedsRedownload(videoPath, candidateURL string) bool {
	candidateURL = strings.TrimSpace(candidateURL)
	if candidateURL == "" {
		return false
	}
	if _, err := os.Stat(videoPath); err != nil {
		return false
	}
	current, ok := r.Sources.ResolveCurrent()
	if !ok {
		return true
	}
	return current != candidateURL
}

// HasMandatoryFields reports whether the record carries an artist and a
// title, the minimum for the record to be written or exported.
func (r *Record) HasMandatoryFields() bool {
	return len(r.missingFields()) == 0
}

func (r *Record) missingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	hasArtist := false
	for _, a := range r.Artists {
		if strings.TrimSpace(a) != "" {
			hasArtist = true
			break
		}
	}
	if !hasArtist {
		missing = append(missing, "artist")
	}
	return missing
}

// SplitList splits a delimited value on comma or semicolon, trims parts,
// and drops empties.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
