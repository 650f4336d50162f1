package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Storefront release strings sharpen over time (year → quarter → day).
// ParseReleaseDate anchors every recognized form at the earliest plausible
// UTC midnight for its precision, so a later, narrower re-parse never has
// to move an anchor backward.

var (
	unknownRe   = regexp.MustCompile(`(?i)\b(tba|tbd|to be announced|coming soon)\b`)
	spaceRe     = regexp.MustCompile(`\s+`)
	quarterRe   = regexp.MustCompile(`(?i)^q([1-4]) (\d{4})$`)
	seasonRe    = regexp.MustCompile(`(?i)^(spring|summer|fall|autumn|winter) (\d{4})$`)
	yearOnlyRe  = regexp.MustCompile(`^\d{4}$`)
	roughYearRe = regexp.MustCompile(`(?i)^(early|mid|late) (\d{4})$`)
)

var dayLayouts = []string{
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan, 2006",
	"2 January, 2006",
	"Jan 2 2006",
	"2 January 2006",
}

var monthLayouts = []string{
	"Jan 2006",
	"January 2006",
}

// Northern-hemisphere season start months; winter anchors to Dec 1 of the
// stated year even though it spans the year boundary.
var seasonStartMonth = map[string]time.Month{
	"spring": time.March,
	"summer": time.June,
	"fall":   time.September,
	"autumn": time.September,
	"winter": time.December,
}

var diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ParseReleaseDate parses a human release-date string into a UTC anchor
// instant and a precision tag. It is pure and total: unrecognized or
// to-be-announced text yields (nil, PrecisionUnknown), never an error.
func ParseReleaseDate(text string) (*time.Time, ReleasePrecision) {
	s := normalizeDateText(text)
	if s == "" || unknownRe.MatchString(s) {
		return nil, PrecisionUnknown
	}

	for _, layout := range dayLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return anchor(t.Year(), t.Month(), t.Day(), PrecisionDay)
		}
	}

	for _, layout := range monthLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return anchor(t.Year(), t.Month(), 1, PrecisionMonth)
		}
	}

	if m := quarterRe.FindStringSubmatch(s); m != nil {
		q, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		return anchor(year, time.Month(1+(q-1)*3), 1, PrecisionQuarter)
	}

	if m := seasonRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])
		return anchor(year, seasonStartMonth[strings.ToLower(m[1])], 1, PrecisionSeason)
	}

	if yearOnlyRe.MatchString(s) {
		year, _ := strconv.Atoi(s)
		return anchor(year, time.January, 1, PrecisionYear)
	}

	if m := roughYearRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[2])
		return anchor(year, time.January, 1, PrecisionYear)
	}

	return nil, PrecisionUnknown
}

// AnchorOrFarFuture resolves a nullable parse result into a sortable
// instant, substituting the FarFuture sentinel for unknown dates.
func AnchorOrFarFuture(t *time.Time) time.Time {
	if t == nil {
		return FarFuture
	}
	return *t
}

func anchor(year int, month time.Month, day int, p ReleasePrecision) (*time.Time, ReleasePrecision) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t, p
}

// normalizeDateText collapses whitespace, folds diacritics (localized
// month names like "févr." arrive accented), and drops abbreviation dots.
func normalizeDateText(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(diacriticFold, s); err == nil {
		s = folded
	}
	s = strings.ReplaceAll(s, ".", "")
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
