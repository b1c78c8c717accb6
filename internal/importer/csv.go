package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// canonAliases maps canonical field names to the header spellings
// accepted case-insensitively in import CSVs.
var canonAliases = map[string][]string{
	"year":            {"year", "release_year"},
	"title":           {"title", "track", "track_title"},
	"artist":          {"artist", "artists"},
	"album":           {"album"},
	"label":           {"label", "record_label", "studio"},
	"youtube":         {"youtube", "youtube_url", "link", "url"},
	"director":        {"director", "directed_by"},
	"genre":           {"genre", "genres", "style"},
	"youtube_channel": {"youtube_channel", "channel", "uploader", "youtube_uploader", "youtube_channel_name"},
	"tag":             {"tag", "tags"},
}

// Row is one import request with canonical field keys.
type Row struct {
	Line   int
	Fields map[string]string
}

// resolveHeaders maps canonical names to column indexes. Unknown columns
// are ignored; the first matching alias wins.
func resolveHeaders(header []string) map[string]int {
	lower := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := lower[name]; !ok {
			lower[name] = i
		}
	}
	resolved := make(map[string]int, len(canonAliases))
	for canon, aliases := range canonAliases {
		for _, alias := range aliases {
			if idx, ok := lower[alias]; ok {
				resolved[canon] = idx
				break
			}
		}
	}
	return resolved
}

// ReadRows parses an import CSV, normalizing headers to canonical keys.
// Rows shorter than the header are padded; completely empty rows are
// dropped.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	columns := resolveHeaders(header)
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("csv header: no title column (accepted: %s)", strings.Join(canonAliases["title"], ", "))
	}
	if _, ok := columns["artist"]; !ok {
		return nil, fmt.Errorf("csv header: no artist column (accepted: %s)", strings.Join(canonAliases["artist"], ", "))
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		fields := make(map[string]string, len(columns))
		empty := true
		for canon, idx := range columns {
			if idx >= len(record) {
				continue
			}
			value := strings.TrimSpace(record[idx])
			fields[canon] = value
			if value != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}
	return rows, nil
}
