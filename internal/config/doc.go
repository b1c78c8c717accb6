// Package config loads, validates, and normalizes mvlib's TOML
// configuration. Paths are tilde-expanded and made absolute; a missing
// file falls back to defaults so read-only passes work out of the box.
package config
