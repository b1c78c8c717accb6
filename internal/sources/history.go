package sources

import (
	"sort"
	"strings"
)

// History is the ordered sequence of source entries for one media item.
// Physical order is whatever parsing or appends produced; the only
// semantically meaningful ordering is by timestamp when resolving the
// most recent successful URL.
type History struct {
	entries []Entry
}

// NewHistory builds a history from the given entries, dropping any with
// blank URLs.
func NewHistory(entries ...Entry) History {
	h := History{}
	for _, e := range entries {
		h.Append(e)
	}
	return h
}

// Append extends the history with one entry. No uniqueness is enforced:
// a failed attempt and a later success on the same URL coexist until a
// Dedup pass runs. Entries with blank URLs are dropped silently.
func (h *History) Append(e Entry) {
	if !e.valid() {
		return
	}
	h.entries = append(h.entries, e)
}

// Len returns the number of retained entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the physical sequence.
func (h *History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// ResolveCurrent returns the URL of the most recent entry whose outcome
// is not Failed. Entries without a timestamp sort before all timestamped
// entries; among equal timestamps the later entry in the sequence wins.
// The second return is false when the history is empty or every entry
// failed. The answer is recomputed on every call, never cached.
func (h *History) ResolveCurrent() (string, bool) {
	found := false
	var best Entry
	for _, e := range h.entries {
		if e.Outcome.Failed() {
			continue
		}
		if !found || !e.Timestamp.Before(best.Timestamp) {
			best = e
			found = true
		}
	}
	if !found {
		return "", false
	}
	return best.URL, true
}

// Contains reports whether the trimmed URL already appears in the
// history. Comparison is exact and case-sensitive; URLs are.
func (h *History) Contains(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	for _, e := range h.entries {
		if strings.TrimSpace(e.URL) == url {
			return true
		}
	}
	return false
}

// Dedup collapses physical duplicates. Entries are grouped by trimmed
// URL text; in each group a single survivor is chosen by information
// value: a Failed entry outranks non-Failed, a Searched entry outranks
// plain, and remaining ties keep the first encountered. Positional and
// display-only attributes (index ordinal, channel label) are stripped
// from every retained entry; the failed/search flags and timestamps are
// not. Returns the number of entries removed and of attributes stripped.
// Running Dedup twice reports zero work the second time.
func (h *History) Dedup() (removed, changed int) {
	type group struct {
		survivor int // position in h.entries
	}
	groups := make(map[string]*group)
	order := make([]string, 0, len(h.entries))

	for i, e := range h.entries {
		key := strings.TrimSpace(e.URL)
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{survivor: i}
			order = append(order, key)
			continue
		}
		if outranks(e, h.entries[g.survivor]) {
			g.survivor = i
		}
	}

	retained := make([]Entry, 0, len(order))
	for _, key := range order {
		e := h.entries[groups[key].survivor]
		if e.Index != NoIndex {
			e.Index = NoIndex
			changed++
		}
		if e.Channel != "" {
			e.Channel = ""
			changed++
		}
		retained = append(retained, e)
	}

	removed = len(h.entries) - len(retained)
	h.entries = retained
	return removed, changed
}

// outranks reports whether candidate carries more information than the
// current survivor of its URL group: Failed beats non-Failed, then
// Searched beats plain. Equal rank keeps the incumbent.
func outranks(candidate, incumbent Entry) bool {
	if candidate.Outcome.Failed() != incumbent.Outcome.Failed() {
		return candidate.Outcome.Failed()
	}
	if candidate.Outcome.Failed() {
		return false
	}
	return candidate.Discovery == DiscoverySearched && incumbent.Discovery != DiscoverySearched
}

// MergeLegacy appends entries imported from older schema variants that
// stored a current slot plus best-effort older slots without outcome
// flags. Entries are ordered by their encoded index when present (stable
// within equal or missing ordinals), assigned OutcomeUnknown so they
// count as non-failed when resolving, and keep whatever timestamps the
// legacy document carried.
func (h *History) MergeLegacy(raw []Entry) {
	ordered := make([]Entry, 0, len(raw))
	for _, e := range raw {
		if e.valid() {
			ordered = append(ordered, e)
		}
	}
	// Unindexed entries sort after every indexed one, keeping document
	// order among themselves.
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i].Index, ordered[j].Index
		if a == NoIndex {
			return false
		}
		if b == NoIndex {
			return true
		}
		return a < b
	})
	for _, e := range ordered {
		e.Outcome = OutcomeUnknown
		h.entries = append(h.entries, e)
	}
}
