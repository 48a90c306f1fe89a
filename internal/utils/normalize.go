package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)

// ErrInvalidTimeFormat is returned when time parsing fails
var ErrInvalidTimeFormat = errors.New("invalid time format")

// Fold lowercases s, strips combining marks and collapses whitespace, so
// "  Zoë  Smith" and "zoe smith" compare equal.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := norm.NFKD.String(s)
	b := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b = append(b, unicode.ToLower(r))
	}
	return wsRe.ReplaceAllString(string(b), " ")
}

// MatchesQuery reports whether every word of query is a prefix of some word
// in fields, or the folded query is a substring of one of them. An empty
// query matches everything.
func MatchesQuery(query string, fields ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	folded := make([]string, 0, len(fields))
	for _, f := range fields {
		f = Fold(f)
		if strings.Contains(f, q) {
			return true
		}
		folded = append(folded, f)
	}
	words := strings.Fields(strings.Join(folded, " "))
	for _, qw := range strings.Fields(q) {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, qw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ParseTime parses a time string in RFC3339 or other common formats
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimeFormat
}
