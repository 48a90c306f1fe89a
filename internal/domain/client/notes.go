package client

import (
	"regexp"
	"strings"
)

const legacyCountMarker = "Sessions attended:"

var (
	legacyCountRe = regexp.MustCompile(`\s*\|?\s*Sessions attended: \d+`)
	leadingSepRe  = regexp.MustCompile(`^\s*\|\s*`)
	trailingSepRe = regexp.MustCompile(`\s*\|\s*$`)
)

// CleanNotes strips "Sessions attended: N" fragments and the separators left
// around them. It reports false when notes carry no such fragment.
func CleanNotes(notes string) (string, bool) {
	if !strings.Contains(notes, legacyCountMarker) {
		return notes, false
	}
	clean := legacyCountRe.ReplaceAllString(notes, "")
	clean = leadingSepRe.ReplaceAllString(clean, "")
	clean = trailingSepRe.ReplaceAllString(clean, "")
	if strings.TrimSpace(clean) == "" {
		clean = ""
	}
	return clean, clean != notes
}
