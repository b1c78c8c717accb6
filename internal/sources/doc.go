// Package sources implements the provenance model behind an NFO record's
// source history: every (re)association of a video with a download URL is
// recorded as an entry, and the ordered collection of entries answers
// which URL is currently considered good, whether a candidate URL is
// novel, and which duplicates a cleanup pass may discard.
//
// The history is a log in intent: appends never enforce uniqueness (a
// failed attempt and a later success on the same URL are both meaningful)
// and only an explicit Dedup pass collapses physical duplicates.
package sources
