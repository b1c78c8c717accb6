package sources

import (
	"strings"
	"time"
)

// Outcome records how a download attempt against a URL ended. Entries
// written before outcome tracking existed carry OutcomeUnknown and are
// treated as non-failed.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

// String returns the lowercase name used in logs and reports.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Failed reports whether the entry represents a failed attempt. Unknown
// counts as non-failed: absence of the flag predates outcome tracking.
func (o Outcome) Failed() bool {
	return o == OutcomeFailed
}

// Discovery records how a URL entered the history: supplied by the
// operator or an import row, or found by a fallback search.
type Discovery int

const (
	DiscoveryProvided Discovery = iota
	DiscoverySearched
)

// String returns the lowercase name used in logs and reports.
func (d Discovery) String() string {
	if d == DiscoverySearched {
		return "searched"
	}
	return "provided"
}

// NoIndex marks an entry without a legacy positional ordinal.
const NoIndex = -1

// Entry is one recorded provenance event for a download URL.
type Entry struct {
	// URL is the identity key for dedup within one history. Never empty
	// after construction; entries with blank URLs are dropped at parse.
	URL string

	// Timestamp records when the entry was recorded (UTC), not when the
	// media was released. Zero means unknown and sorts before all
	// timestamped entries when resolving the current URL.
	Timestamp time.Time

	Outcome   Outcome
	Discovery Discovery

	// Channel is a best-effort uploader label. Display-only: cleanup
	// passes strip it.
	Channel string

	// Index is the positional ordinal legacy formats encoded on each
	// entry, or NoIndex. Display-only: cleanup passes strip it.
	Index int
}

// valid reports whether the entry carries a usable URL.
func (e Entry) valid() bool {
	return strings.TrimSpace(e.URL) != ""
}
