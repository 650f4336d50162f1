package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
)

// NormalizeTitle prepares a media title for presence comparison:
//   - trims and lowercases
//   - folds diacritics
//   - drops punctuation (case/punctuation-insensitive matching)
//   - compresses runs of whitespace into one space
//
// "WALL·E" and "Wall-E", or "Amélie" and "Amelie", normalize identically.
func NormalizeTitle(title string) string {
	s := strings.TrimSpace(title)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticFold, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			if !prevSpace && b.Len() > 0 {
				b.WriteByte(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
