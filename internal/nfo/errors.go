package nfo

import (
	"fmt"
	"strings"
)

// ParseError reports a document that could not be parsed at all. Batch
// drivers skip the record and keep going; it is never fatal.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse nfo: %v", e.Err)
	}
	return fmt.Sprintf("parse nfo %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports a document that parsed cleanly but lacks a
// mandatory field. Distinct from ParseError: the record needs operator
// attention, the file is not corrupt. Decode still returns the partial
// record alongside this error.
type MissingFieldError struct {
	Path   string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	fields := strings.Join(e.Fields, ", ")
	if e.Path == "" {
		return fmt.Sprintf("nfo record missing mandatory field(s): %s", fields)
	}
	return fmt.Sprintf("nfo record %s missing mandatory field(s): %s", e.Path, fields)
}
