package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences splits plain text on '.', '!' or '?' followed by whitespace or
// the end of the text. Closing quotes and brackets directly after the
// punctuation stay with the sentence. Abbreviations such as "e.g." are split
// like any other full stop.
func SplitSentences(s string) []string {
	var sentences []string
	runes := []rune(s)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && isCloser(runes[end]) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}
		if sentence := strings.TrimSpace(string(runes[start:end])); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
		i = end - 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// Words splits s on Unicode letter/digit boundaries. An apostrophe between two
// letters is kept inside the word and normalized to '\''.
func Words(s string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}

	for i, r := range s {
		switch {
		case isWordRune(r):
			current.WriteRune(r)
		case isApostrophe(r) && current.Len() > 0 && nextIsLetter(s, i+utf8.RuneLen(r)):
			current.WriteRune('\'')
		default:
			flush()
		}
	}
	flush()

	return words
}

// RuneLen returns the number of characters in s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func nextIsLetter(s string, offset int) bool {
	if offset >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[offset:])
	return unicode.IsLetter(r)
}
