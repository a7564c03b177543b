// Package format holds the display formatting shared by the dashboard pages.
package format

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// DateTimeLayout is the DD/MM/YYYY HH:mm:ss layout used across the dashboard.
const DateTimeLayout = "02/01/2006 15:04:05"

// FormatNumber renders v with exactly four decimal places.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// FormatScore renders v as the shortest decimal that round-trips, e.g. 0.8.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDateTime renders t in loc using DateTimeLayout. The zero time renders
// as an empty string; a nil loc means UTC.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateTimeLayout)
}

// Truncate shortens s to at most n runes, replacing the tail with an ellipsis.
// n <= 0 disables truncation.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:n-1]), isSpace) + "…"
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
