// Package keywords ranks significant terms and two-word phrases of a text.
package keywords

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/edgecomet/seometa/internal/seo/normalize"
	"github.com/edgecomet/seometa/pkg/types"
)

const (
	// TitleBoost multiplies the frequency of terms that also appear in the title.
	TitleBoost = 1.5

	// MinUnigramLength is the shortest single word considered a keyword.
	MinUnigramLength = 3
	// MinPhraseWordLength is the shortest word allowed inside a phrase.
	MinPhraseWordLength = 2
	// MinPhraseFrequency filters out phrases that co-occur only once.
	MinPhraseFrequency = 2
)

type candidate struct {
	term      string
	frequency int
	weight    float64
}

// Extract returns up to maxKeywords ranked keywords. Terms found in title get
// TitleBoost before sorting; ties fall back to longer terms first, then
// lexicographic order. A non-positive maxKeywords uses the default.
func Extract(normalized types.NormalizedText, stopwords Stopwords, maxKeywords int, title string) []types.Keyword {
	if maxKeywords <= 0 {
		maxKeywords = types.DefaultMaxKeywords
	}

	counts := make(map[string]int)
	for _, word := range normalized.Words {
		word = strings.ToLower(word)
		if isUnigramCandidate(word, stopwords) {
			counts[word]++
		}
	}

	phrases := make(map[string]int)
	for _, sentence := range normalized.Sentences {
		words := lowerWords(sentence)
		for i := 0; i+1 < len(words); i++ {
			if isPhraseWord(words[i], stopwords) && isPhraseWord(words[i+1], stopwords) &&
				(hasLetter(words[i]) || hasLetter(words[i+1])) {
				phrases[words[i]+" "+words[i+1]]++
			}
		}
	}
	for phrase, frequency := range phrases {
		if frequency >= MinPhraseFrequency {
			counts[phrase] = frequency
		}
	}

	titleWords := lowerWords(title)
	candidates := make([]candidate, 0, len(counts))
	for term, frequency := range counts {
		weight := float64(frequency)
		if containsPhrase(titleWords, strings.Fields(term)) {
			weight *= TitleBoost
		}
		candidates = append(candidates, candidate{term: term, frequency: frequency, weight: weight})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		la, lb := utf8.RuneCountInString(a.term), utf8.RuneCountInString(b.term)
		if la != lb {
			return la > lb
		}
		return a.term < b.term
	})

	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}

	result := make([]types.Keyword, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, types.Keyword{
			Term:       c.term,
			Frequency:  c.frequency,
			DensityPct: density(c.frequency, normalized.WordCount),
		})
	}
	return result
}

// Terms returns the terms of the first n keywords.
func Terms(keywords []types.Keyword, n int) []string {
	if n < 0 || n > len(keywords) {
		n = len(keywords)
	}
	terms := make([]string, 0, n)
	for _, kw := range keywords[:n] {
		terms = append(terms, kw.Term)
	}
	return terms
}

// ContainsTerm reports whether term appears in text as a whole-word sequence,
// ignoring case.
func ContainsTerm(text, term string) bool {
	return containsPhrase(lowerWords(text), lowerWords(term))
}

// density returns frequency as a percentage of wordCount rounded to one decimal.
func density(frequency, wordCount int) float64 {
	if wordCount == 0 {
		return 0
	}
	return math.Round(float64(frequency)/float64(wordCount)*1000) / 10
}

func lowerWords(s string) []string {
	words := normalize.Words(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return words
}

func isUnigramCandidate(word string, stopwords Stopwords) bool {
	return utf8.RuneCountInString(word) >= MinUnigramLength &&
		hasLetter(word) &&
		!stopwords.Contains(word)
}

func isPhraseWord(word string, stopwords Stopwords) bool {
	return utf8.RuneCountInString(word) >= MinPhraseWordLength && !stopwords.Contains(word)
}

func hasLetter(word string) bool {
	return strings.IndexFunc(word, unicode.IsLetter) >= 0
}

func containsPhrase(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
