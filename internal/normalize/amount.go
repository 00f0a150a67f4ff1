// Package normalize resolves the numbers and dates found in statement text
// into the canonical forms every entry carries.
package normalize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotANumber is returned when a cell holds no parseable amount.
var ErrNotANumber = errors.New("not a number")

var (
	// Currency markers stripped before parsing, longest first.
	currencyMarkers = regexp.MustCompile(`(?i)(?:inr|rs\.?|usd|gbp|eur|aud|₹|£|\$|€|¥)`)
	drCrSuffix      = regexp.MustCompile(`(?i)\s*(?:cr|dr)\.?$`)
	plainNumber     = regexp.MustCompile(`^[-+]?\(?\s*(?:\d{1,3}(?:[,.\s]\d{2,3})+|\d+)(?:[.,]\d+)?\s*\)?$`)
)

// ParseNumber converts a locale-punctuated amount such as "1,250.60",
// "1.250,60", "1,25,000", "(45.00)" or "Rs. 450 DR" into a decimal.
// Negative values keep their sign.
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = drCrSuffix.ReplaceAllString(s, "")
	s = currencyMarkers.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\u00A0", "") // non-breaking space
	s = strings.ReplaceAll(s, " ", "")

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = !negative
		s = s[:len(s)-1]
	}

	if s == "" {
		return decimal.Zero, ErrNotANumber
	}
	s = canonicalSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// canonicalSeparators rewrites grouping and decimal marks so that only a
// single '.' decimal point remains.
func canonicalSeparators(s string) string {
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	switch {
	case commas > 0 && dots > 0:
		// The right-most mark is the decimal separator.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas == 1:
		if tail := len(s) - strings.Index(s, ",") - 1; tail == 1 || tail == 2 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case commas > 1:
		return strings.ReplaceAll(s, ",", "")
	case dots > 1:
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// RoundAmount returns the magnitude of d rounded half away from zero.
func RoundAmount(d decimal.Decimal) int64 {
	return d.Abs().Round(0).IntPart()
}

// Amount parses s and returns its rounded magnitude.
func Amount(s string) (int64, error) {
	d, err := ParseNumber(s)
	if err != nil {
		return 0, err
	}
	return RoundAmount(d), nil
}

// IsPlainNumber reports whether a cell is a bare number, optionally signed,
// grouped or parenthesized, with no currency words or other text.
func IsPlainNumber(s string) bool {
	return plainNumber.MatchString(strings.TrimSpace(s))
}
