package compose

import (
	"strings"
	"unicode"
)

// trailingSeparators are trimmed from the end of a cut so it never ends on a dangling separator.
const trailingSeparators = " ,;:-–—|/("

// TruncateAtWord shortens s to at most max characters, cutting at the last
// whitespace boundary. When no boundary exists, or cutting there would leave
// fewer than minKeep characters, it falls back to a hard cut at max characters.
func TruncateAtWord(s string, max, minKeep int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	for i := max; i > 0; i-- {
		if !unicode.IsSpace(runes[i]) {
			continue
		}
		cut := strings.TrimRight(string(runes[:i]), trailingSeparators)
		if len([]rune(cut)) >= minKeep && cut != "" {
			return cut
		}
		break
	}

	return strings.TrimRightFunc(string(runes[:max]), unicode.IsSpace)
}

func toUpper(r rune) rune {
	return unicode.ToUpper(r)
}
