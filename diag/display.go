package diag

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// TruncateDisplay validates b as UTF-8 and truncates it to at most
// maxCols of rendered terminal width (east-asian-aware via
// golang.org/x/text/width), appending an ellipsis marker when
// truncated. It never changes program semantics — spec.md §8a notes
// this is display formatting for diagnostics only, never load-bearing
// for equal?/hash.
func TruncateDisplay(b []byte, maxCols int) string {
	if !utf8.Valid(b) {
		return "<invalid-utf8 str payload>"
	}

	s := string(b)
	cols := 0
	out := make([]rune, 0, len(s))
	for _, r := range s {
		w := runeWidth(r)
		if cols+w > maxCols {
			return string(out) + "…"
		}
		out = append(out, r)
		cols += w
	}
	return string(out)
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	default:
		return 1
	}
}
