package nfo

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"

	"mvlib/internal/sources"
)

const (
	xmlDeclaration  = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	indent          = "  "
	timestampFormat = "2006-01-02T15:04:05Z"
)

// Encode serializes the record in the canonical shape: stable field
// order, repeated children only for non-empty values, the source history
// nested under the record, pretty-printed. Operators diff these files to
// audit history, so the layout must stay byte-stable for unchanged
// records.
func Encode(rec *Record) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	buf.WriteString("<musicvideo>\n")

	writeTextElement(&buf, 1, "title", rec.Title)
	writeTextElement(&buf, 1, "album", rec.Album)
	if rec.Label != "" {
		writeTextElement(&buf, 1, "studio", rec.Label)
	}
	if rec.Year != "" {
		writeTextElement(&buf, 1, "year", rec.Year)
	}
	for _, d := range rec.Directors {
		if d != "" {
			writeTextElement(&buf, 1, "director", d)
		}
	}
	for _, g := range rec.Genres {
		if g != "" {
			writeTextElement(&buf, 1, "genre", g)
		}
	}
	for _, a := range rec.Artists {
		if a != "" {
			writeTextElement(&buf, 1, "artist", a)
		}
	}
	for _, t := range rec.Tags {
		if t != "" {
			writeTextElement(&buf, 1, "tag", t)
		}
	}

	if rec.Sources.Len() > 0 {
		writeIndent(&buf, 1)
		buf.WriteString("<sources>\n")
		for _, entry := range rec.Sources.Entries() {
			writeSourceEntry(&buf, 2, entry)
		}
		writeIndent(&buf, 1)
		buf.WriteString("</sources>\n")
	}

	buf.WriteString("</musicvideo>\n")
	return buf.Bytes()
}

func writeSourceEntry(buf *bytes.Buffer, depth int, e sources.Entry) {
	writeIndent(buf, depth)
	buf.WriteString("<url")
	if !e.Timestamp.IsZero() {
		writeAttr(buf, "ts", e.Timestamp.UTC().Truncate(time.Second).Format(timestampFormat))
	}
	if e.Outcome.Failed() {
		writeAttr(buf, "failed", "true")
	}
	if e.Discovery == sources.DiscoverySearched {
		writeAttr(buf, "search", "true")
	}
	if e.Channel != "" {
		writeAttr(buf, "channel", e.Channel)
	}
	if e.Index != sources.NoIndex {
		writeAttr(buf, "index", strconv.Itoa(e.Index))
	}
	buf.WriteString(">")
	escapeInto(buf, e.URL)
	buf.WriteString("</url>\n")
}

func writeTextElement(buf *bytes.Buffer, depth int, tag, text string) {
	writeIndent(buf, depth)
	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	escapeInto(buf, text)
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func writeAttr(buf *bytes.Buffer, name, value string) {
	buf.WriteString(" ")
	buf.WriteString(name)
	buf.WriteString(`="`)
	escapeInto(buf, value)
	buf.WriteString(`"`)
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString(indent)
	}
}

func escapeInto(buf *bytes.Buffer, text string) {
	_ = xml.EscapeText(buf, []byte(text))
}
