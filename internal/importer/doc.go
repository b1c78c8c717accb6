// Package importer drives the CSV import pass: for every row it derives
// library paths, downloads the video when needed, appends a provenance
// entry to the sidecar history, and writes the NFO atomically. One row is
// fully processed before the next.
package importer
