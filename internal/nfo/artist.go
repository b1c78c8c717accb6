package nfo

import (
	"bytes"
	"errors"
	"os"
	"strings"

	"mvlib/internal/fileutil"
)

// ArtistFileName is the fixed name of the per-artist-directory record.
const ArtistFileName = "artist.nfo"

// ArtistRecord is the minor per-artist-directory record. It carries no
// source history; biography is best-effort and may stay empty.
type ArtistRecord struct {
	Name      string
	Biography string
}

// EncodeArtist serializes an artist record in the same pretty-printed
// style as video records.
func EncodeArtist(rec *ArtistRecord) []byte {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	buf.WriteString("<artist>\n")
	writeTextElement(&buf, 1, "name", rec.Name)
	if rec.Biography != "" {
		writeTextElement(&buf, 1, "biography", rec.Biography)
	}
	buf.WriteString("</artist>\n")
	return buf.Bytes()
}

// DecodeArtist parses an artist record.
func DecodeArtist(data []byte, path string) (*ArtistRecord, error) {
	roots, err := parseRoots(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	var root *element
	for i := range roots {
		if roots[i].XMLName.Local == "artist" {
			root = &roots[i]
			break
		}
	}
	if root == nil {
		return nil, &ParseError{Path: path, Err: errors.New("no artist element")}
	}
	rec := &ArtistRecord{}
	for i := range root.Children {
		child := &root.Children[i]
		text := strings.TrimSpace(child.Text)
		switch child.XMLName.Local {
		case "name":
			rec.Name = text
		case "biography":
			rec.Biography = text
		}
	}
	return rec, nil
}

// WriteArtistFile writes an artist record atomically.
func WriteArtistFile(path string, rec *ArtistRecord) error {
	return fileutil.WriteFileAtomic(path, EncodeArtist(rec), 0o644)
}

// ReadArtistFile loads an artist record.
func ReadArtistFile(path string) (*ArtistRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return DecodeArtist(data, path)
}
