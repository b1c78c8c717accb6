// Package exporter flattens the library's sidecars into a CSV with one
// row per video, carrying the currently resolved source URL.
package exporter
