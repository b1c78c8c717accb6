package nfo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"mvlib/internal/sources"
)

// element is a generic parsed XML node. The codec never binds structs to
// a fixed schema; legacy documents vary too much for that.
type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []element  `xml:",any"`
}

func (el *element) attr(name string) (string, bool) {
	for _, a := range el.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Decode parses an on-disk record in any known shape and normalizes it
// into a Record. Accepted shapes:
//
//   - canonical: <musicvideo> with a nested <sources> of attributed urls
//   - sibling <sources>: two root elements in one document, spliced
//   - legacy <source> container of bare urls (index or document order,
//     no outcome tracking)
//   - <premiered> date instead of <year>
//
// A document that cannot be parsed yields a *ParseError. A document that
// parses but lacks artist or title yields the partial record together
// with a *MissingFieldError.
func Decode(data []byte, path string) (*Record, error) {
	roots, err := parseRoots(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var mv *element
	var siblingSources *element
	for i := range roots {
		switch roots[i].XMLName.Local {
		case "musicvideo":
			if mv == nil {
				mv = &roots[i]
			}
		case "sources":
			if siblingSources == nil {
				siblingSources = &roots[i]
			}
		}
	}
	if mv == nil {
		return nil, &ParseError{Path: path, Err: errors.New("no musicvideo element")}
	}

	rec := &Record{}
	sourcesElem := siblingSources
	var legacy []sources.Entry

	for i := range mv.Children {
		child := &mv.Children[i]
		text := strings.TrimSpace(child.Text)
		switch child.XMLName.Local {
		case "title":
			rec.Title = text
		case "album":
			rec.Album = text
		case "studio":
			rec.Label = text
		case "year":
			rec.Year = text
		case "premiered":
			if rec.Year == "" {
				rec.Year = yearFromPremiered(text)
			}
		case "artist":
			if text != "" {
				rec.Artists = append(rec.Artists, text)
			}
		case "director":
			if text != "" {
				rec.Directors = append(rec.Directors, text)
			}
		case "genre":
			if text != "" {
				rec.Genres = append(rec.Genres, text)
			}
		case "tag":
			// One producer wrote a single comma-joined tag element,
			// another one element per tag. Splitting handles both.
			rec.Tags = append(rec.Tags, SplitList(text)...)
		case "sources":
			sourcesElem = child
		case "source":
			legacy = append(legacy, legacyEntries(child)...)
		}
	}

	if sourcesElem != nil {
		for i := range sourcesElem.Children {
			url := &sourcesElem.Children[i]
			if url.XMLName.Local != "url" {
				continue
			}
			rec.Sources.Append(entryFromURL(url))
		}
	}
	if len(legacy) > 0 {
		rec.Sources.MergeLegacy(legacy)
	}

	if missing := rec.missingFields(); len(missing) > 0 {
		return rec, &MissingFieldError{Path: path, Fields: missing}
	}
	return rec, nil
}

// parseRoots streams top-level elements. Legacy documents are not always
// well-formed single-root XML: <sources> may trail <musicvideo> as a
// second root, so the codec decodes until EOF instead of unmarshalling
// once and silently ignoring the remainder.
func parseRoots(data []byte) ([]element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var roots []element
	for {
		var el element
		err := dec.Decode(&el)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		roots = append(roots, el)
	}
	if len(roots) == 0 {
		return nil, errors.New("empty document")
	}
	return roots, nil
}

func entryFromURL(el *element) sources.Entry {
	e := sources.Entry{
		URL:   strings.TrimSpace(el.Text),
		Index: sources.NoIndex,
	}
	for _, a := range el.Attrs {
		switch a.Name.Local {
		case "ts", "timestamp", "time":
			if e.Timestamp.IsZero() {
				e.Timestamp = parseTimestamp(a.Value)
			}
		case "failed":
			if a.Value == "true" {
				e.Outcome = sources.OutcomeFailed
			}
		case "search":
			if a.Value == "true" {
				e.Discovery = sources.DiscoverySearched
			}
		case "channel":
			e.Channel = strings.TrimSpace(a.Value)
		case "index":
			if n, err := strconv.Atoi(strings.TrimSpace(a.Value)); err == nil && n >= 0 {
				e.Index = n
			}
		}
	}
	if !e.Outcome.Failed() {
		// Absence of the failed flag predates outcome tracking: a
		// timestamped entry is a recorded success, an untimestamped one
		// is genuinely unknown.
		if e.Timestamp.IsZero() {
			e.Outcome = sources.OutcomeUnknown
		} else {
			e.Outcome = sources.OutcomeSuccess
		}
	}
	return e
}

// legacyEntries collects the bare url children of a legacy <source>
// container, keeping whatever index/ts/channel attributes were encoded.
func legacyEntries(el *element) []sources.Entry {
	var entries []sources.Entry
	docOrder := 0
	for i := range el.Children {
		child := &el.Children[i]
		if child.XMLName.Local != "url" {
			continue
		}
		e := entryFromURL(child)
		if e.Index == sources.NoIndex {
			e.Index = docOrder
		}
		docOrder++
		entries = append(entries, e)
	}
	return entries
}

// timestampLayouts covers the formats the scripts era wrote: RFC 3339
// with or without zone, and naive isoformat with optional fraction.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

// yearFromPremiered derives a year from a premiered date by taking the
// leading component and keeping its first four digits.
func yearFromPremiered(value string) string {
	lead, _, _ := strings.Cut(strings.TrimSpace(value), "-")
	if len(lead) < 4 {
		return lead
	}
	for _, r := range lead[:4] {
		if r < '0' || r > '9' {
			return lead
		}
	}
	return lead[:4]
}
