// Package main hosts the mvlib CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// batch passes over the music video library: CSV import, source
// replacement, sidecar cleanup and conversion, metadata export,
// structure validation, duplicate detection, and tag management. It
// centralizes configuration resolution, the library lock, structured
// logging setup, and run-ledger bookkeeping so subcommands can focus
// on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
