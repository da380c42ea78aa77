// Package textnorm normalizes free-text identifiers (author names,
// keywords) the way the Store and Ingestor expect: case-folded,
// whitespace-collapsed, Unicode-normalized.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold case-folds and collapses internal whitespace, producing the
// normalized form used as an author's dedup key. Keywords are
// deduplicated by the Ingestor with plain lower-casing instead.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	s, _, _ = transform.String(norm.NFKC, s)
	s = strings.ToLower(s)
	return collapseWhitespace(s)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// SplitKeywords splits a semicolon-separated keyword string, trims each
// term, and drops empties, without deduplicating — deduplication with
// first-seen-casing preservation is the Ingestor's job.
func SplitKeywords(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
