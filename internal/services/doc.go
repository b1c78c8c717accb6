// Package services defines shared utilities consumed by the batch passes
// and external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent across passes.
//   - Run-scoped context helpers for logging and the run ledger.
//   - A command Executor abstraction so tool clients stay testable.
//
// Use these helpers when wiring new pass logic so error handling and
// observability stay uniform across the tool.
package services
