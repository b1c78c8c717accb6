// Package converter migrates sidecars from the legacy schema shapes to
// the canonical one. Decoding accepts every historical shape, so a
// re-encode of the parsed record is the whole migration.
package converter
