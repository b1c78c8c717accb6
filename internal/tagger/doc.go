// Package tagger adds or removes a tag across every sidecar belonging to
// a list of artists.
package tagger
