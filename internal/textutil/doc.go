// Package textutil provides the text normalization and similarity
// primitives shared across the library tooling.
//
// The primary use cases are:
//   - Deriving filesystem-safe, comparison-safe tokens from free-text
//     artist/title/label strings (NormalizeToken)
//   - Creating token-based fingerprints from text for comparison
//   - Computing cosine similarity between fingerprints for duplicate
//     detection
//
// Every component that derives a path or a comparison key from free
// text must route through NormalizeToken; divergent normalizers are a
// known source of cross-tool drift.
package textutil
