// Package textnorm folds free text into the canonical form every matcher in
// the service compares against.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripAccents removes combining marks after canonical decomposition,
// preserving case and punctuation.
func StripAccents(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases s and strips diacritics, keeping punctuation.
func Fold(s string) string {
	return StripAccents(strings.ToLower(s))
}

// Normalize folds s, replaces everything outside [a-z0-9 ] with a space,
// collapses whitespace and trims.
func Normalize(s string) string {
	folded := Fold(s)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens returns the whitespace-separated words of Normalize(s).
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// ContainsPhrase reports whether the normalized phrase occurs in the
// normalized text on word boundaries.
func ContainsPhrase(normalizedText, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+normalizedText+" ", " "+phrase+" ")
}
