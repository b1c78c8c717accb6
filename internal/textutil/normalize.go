package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UnknownToken is returned when normalization leaves nothing usable.
const UnknownToken = "unknown"

// stripMarks removes combining marks after canonical decomposition, so
// "Motörhead" and "Motorhead" normalize identically.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	separatorRun  = regexp.MustCompile(`_+`)
	nonToken      = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeToken turns free text into a filesystem-safe, comparison-safe
// token: canonical decomposition, combining marks stripped, lowercased,
// whitespace runs collapsed to a single underscore, everything outside
// [a-z0-9_] removed, repeated underscores collapsed, leading/trailing
// underscores trimmed. Returns UnknownToken when nothing survives.
func NormalizeToken(text string) string {
	decomposed, _, err := transform.String(stripMarks, text)
	if err == nil {
		text = decomposed
	}
	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespaceRun.ReplaceAllString(text, "_")
	text = nonToken.ReplaceAllString(text, "")
	text = separatorRun.ReplaceAllString(text, "_")
	text = strings.Trim(text, "_")
	if text == "" {
		return UnknownToken
	}
	return text
}

// versionSuffixes marks alternate-cut qualifiers that should not keep two
// entries from matching as duplicates of the same track.
var versionSuffixes = regexp.MustCompile(`\b(remastered|remaster|remixed|remix|live|acoustic|demo|radio edit|extended|original|official)\b`)

// FoldForMatch prepares free text for fuzzy comparison: the same mark and
// case folding as NormalizeToken but with spaces preserved, punctuation
// replaced by spaces, and version qualifiers removed.
func FoldForMatch(text string) string {
	decomposed, _, err := transform.String(stripMarks, text)
	if err == nil {
		text = decomposed
	}
	text = strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	text = versionSuffixes.ReplaceAllString(b.String(), " ")
	return strings.Join(strings.Fields(text), " ")
}
