// Package recon implements the transaction-to-record reconciliation engine:
// dimension scorers, the interactive suggestion ranker and the greedy batch
// reconciler. Everything except the batch reconciler's bulk insert is pure
// in-memory computation; callers own all loading and persistence.
package recon

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, then recomposes, so
// "Καφές" and "Καφες" normalize to the same text.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeText lowercases s, removes diacritics and drops every character
// that is not a latin letter, a greek letter, a digit or whitespace. Bank
// statement descriptions mix scripts and punctuation freely; this gives the
// text scorer a language-agnostic token stream.
func NormalizeText(s string) string {
	lower := strings.ToLower(s)
	stripped, _, err := transform.String(stripMarks, lower)
	if err != nil {
		stripped = lower
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z',
			r >= '0' && r <= '9',
			unicode.IsSpace(r),
			unicode.Is(unicode.Greek, r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenize splits normalized text into comparison tokens, dropping tokens of
// two runes or fewer (articles, abbreviations, noise).
func tokenize(s string) []string {
	fields := strings.Fields(NormalizeText(s))
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
