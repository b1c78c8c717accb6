package nfo

import (
	"fmt"
	"os"

	"mvlib/internal/fileutil"
)

// ReadFile loads and decodes a record. Unreadable files surface as
// *ParseError so batch drivers treat them like any other skip-and-log
// document.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Decode(data, path)
}

// WriteFile encodes the record and replaces path atomically. Records
// missing mandatory fields are rejected before anything touches disk.
func WriteFile(path string, rec *Record) error {
	if missing := rec.missingFields(); len(missing) > 0 {
		return &MissingFieldError{Path: path, Fields: missing}
	}
	if err := fileutil.WriteFileAtomic(path, Encode(rec), 0o644); err != nil {
		return fmt.Errorf("write nfo: %w", err)
	}
	return nil
}
