package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical date shape of every entry.
const Layout = "2006-01-02"

var (
	// 2025/01/05, 05-01-2025, 5.1.25, 2025-01-05T10:22:00Z
	datePatternNumeric = regexp.MustCompile(`\b(\d{1,4})[/\-.](\d{1,2})[/\-.](\d{1,4})(?:[^0-9]|$)`)
	// 5 Jan 2025, 05-Jan-25, 5th January, 2025
	datePatternDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[\s\-/]*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?[\s\-/,]*(\d{4}|\d{2})\b`)
	// Jan 5, 2025
	datePatternMonthDay = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

var monthIndex = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Date finds the first calendar date in s and returns it as YYYY-MM-DD.
// Slash, dash and dot separated dates are reordered: a four digit first
// segment means year/month/day, a four digit last segment means
// day/month/year, and a two digit last segment is read as 20YY. When the
// month slot exceeds 12 while the day slot does not, month and day are
// swapped. Dates that do not exist on the calendar are rejected.
func Date(s string) (string, bool) {
	date, _, ok := findDate(s)
	return date, ok
}

// IsDateLike reports whether a cell is a date, optionally followed by a time.
func IsDateLike(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" || len(cell) > 32 {
		return false
	}
	_, start, ok := findDate(cell)
	return ok && start == 0
}

// HasImpossibleDate reports whether s holds a well-formed day, month and year
// that does not exist on the calendar, such as 31-02-2025.
func HasImpossibleDate(s string) bool {
	for _, m := range datePatternNumeric.FindAllStringSubmatch(s, -1) {
		if y, mo, d, ok := numericParts(m[1], m[2], m[3]); ok && impossible(y, mo, d) {
			return true
		}
	}
	for _, m := range datePatternDayMonth.FindAllStringSubmatch(s, -1) {
		if y, mo, d, ok := namedParts(m[1], m[2], m[3]); ok && impossible(y, mo, d) {
			return true
		}
	}
	for _, m := range datePatternMonthDay.FindAllStringSubmatch(s, -1) {
		if y, mo, d, ok := namedParts(m[2], m[1], m[3]); ok && impossible(y, mo, d) {
			return true
		}
	}
	return false
}

func findDate(s string) (string, int, bool) {
	best, bestAt := "", -1

	consider := func(date string, at int) {
		if bestAt == -1 || at < bestAt {
			best, bestAt = date, at
		}
	}

	for _, m := range datePatternNumeric.FindAllStringSubmatchIndex(s, -1) {
		if date, ok := numericDate(s[m[2]:m[3]], s[m[4]:m[5]], s[m[6]:m[7]]); ok {
			consider(date, m[0])
			break
		}
	}
	for _, m := range datePatternDayMonth.FindAllStringSubmatchIndex(s, -1) {
		if date, ok := namedDate(s[m[2]:m[3]], s[m[4]:m[5]], s[m[6]:m[7]]); ok {
			consider(date, m[0])
			break
		}
	}
	for _, m := range datePatternMonthDay.FindAllStringSubmatchIndex(s, -1) {
		if date, ok := namedDate(s[m[4]:m[5]], s[m[2]:m[3]], s[m[6]:m[7]]); ok {
			consider(date, m[0])
			break
		}
	}

	return best, bestAt, bestAt >= 0
}

func numericDate(a, b, c string) (string, bool) {
	y, m, d, ok := numericParts(a, b, c)
	if !ok {
		return "", false
	}
	return calendarDate(y, m, d)
}

func numericParts(a, b, c string) (y, m, d int, ok bool) {
	switch {
	case len(a) == 4 && len(c) <= 2:
		y, m, d = atoi(a), atoi(b), atoi(c)
	case len(c) == 4 && len(a) <= 2:
		d, m, y = atoi(a), atoi(b), atoi(c)
	case len(c) == 2 && len(a) <= 2:
		d, m, y = atoi(a), atoi(b), 2000+atoi(c)
	default:
		return 0, 0, 0, false
	}
	if m > 12 && d <= 12 {
		m, d = d, m
	}
	return y, m, d, true
}

func namedDate(day, month, year string) (string, bool) {
	y, m, d, ok := namedParts(day, month, year)
	if !ok {
		return "", false
	}
	return calendarDate(y, m, d)
}

func namedParts(day, month, year string) (y, m, d int, ok bool) {
	m, ok = monthIndex[strings.ToLower(month[:3])]
	if !ok {
		return 0, 0, 0, false
	}
	y = atoi(year)
	if len(year) == 2 {
		y += 2000
	}
	return y, m, atoi(day), true
}

// impossible is true for a date whose fields are each in range but that
// the calendar does not have.
func impossible(y, m, d int) bool {
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1900 || y > 2999 {
		return false
	}
	_, ok := calendarDate(y, m, d)
	return !ok
}

func calendarDate(y, m, d int) (string, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1900 || y > 2999 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
