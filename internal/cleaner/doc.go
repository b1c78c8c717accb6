// Package cleaner deduplicates source histories across the library:
// repeated URLs collapse to their most meaningful entry and legacy index
// and channel attributes are stripped.
package cleaner
