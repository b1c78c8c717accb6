// Package library models the on-disk music video library: the
// artist/title path layout, tree snapshots used by the batch passes, and
// the structural validation rules.
//
// The layout is one directory per artist containing an artist.nfo file
// plus one video and one sidecar .nfo per title, both named after the
// normalized title token.
package library
