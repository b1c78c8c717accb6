// Package nfo models one music video's sidecar metadata record and the
// codec that reads and writes it.
//
// The on-disk format is Kodi-compatible XML. Several legacy shapes exist
// in real libraries; Decode accepts all of them and normalizes into one
// in-memory model, so nothing downstream ever branches on schema
// vintage. Encode always emits the canonical shape, pretty-printed,
// because operators audit history by diffing these files.
package nfo
