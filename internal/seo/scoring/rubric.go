package scoring

import (
	"fmt"
	"strings"

	"github.com/edgecomet/seometa/internal/seo/keywords"
	"github.com/edgecomet/seometa/internal/seo/normalize"
	"github.com/edgecomet/seometa/pkg/types"
)

const (
	MinContentWords          = 300
	MinDensityPct            = 0.5
	MaxDensityPct            = 3.0
	MinDistinctKeywords      = 5
	MaxWordsPerSentence      = 25.0
	TitleKeywordWindow       = 3
	DescriptionKeywordWindow = 5
)

// Input is everything a check may look at.
type Input struct {
	Title       string
	Description string
	Normalized  types.NormalizedText
	Keywords    []types.Keyword
}

// Check is one rubric row. Pass decides the outcome; Suggest is called only
// for failed checks and must name the offending value.
type Check struct {
	Name    string
	Weight  int
	Pass    func(in Input) bool
	Suggest func(in Input) string
}

// Rubric is the fixed, ordered scoring table. Weights sum to 100.
var Rubric = []Check{
	{
		Name:   "title_length",
		Weight: 15,
		Pass: func(in Input) bool {
			n := normalize.RuneLen(in.Title)
			return n >= types.TitleMinLength && n <= types.TitleTargetLength
		},
		Suggest: func(in Input) string {
			n := normalize.RuneLen(in.Title)
			if n < types.TitleMinLength {
				return fmt.Sprintf("Title is %d characters; expand to at least %d.", n, types.TitleMinLength)
			}
			return fmt.Sprintf("Title is %d characters; shorten to at most %d.", n, types.TitleTargetLength)
		},
	},
	{
		Name:   "description_length",
		Weight: 15,
		Pass: func(in Input) bool {
			n := normalize.RuneLen(in.Description)
			return n >= types.DescriptionMinLength && n <= types.DescriptionTarget
		},
		Suggest: func(in Input) string {
			n := normalize.RuneLen(in.Description)
			if n < types.DescriptionMinLength {
				return fmt.Sprintf("Description is %d characters; expand to at least %d.", n, types.DescriptionMinLength)
			}
			return fmt.Sprintf("Description is %d characters; shorten to at most %d.", n, types.DescriptionTarget)
		},
	},
	{
		Name:   "title_keyword",
		Weight: 15,
		Pass: func(in Input) bool {
			return containsAny(in.Title, keywords.Terms(in.Keywords, TitleKeywordWindow))
		},
		Suggest: func(in Input) string {
			terms := keywords.Terms(in.Keywords, TitleKeywordWindow)
			if len(terms) == 0 {
				return "Title contains no keyword because none could be extracted; add more topical content."
			}
			return fmt.Sprintf("Title %q contains none of the top keywords (%s); include one.", in.Title, strings.Join(terms, ", "))
		},
	},
	{
		Name:   "description_keyword",
		Weight: 10,
		Pass: func(in Input) bool {
			return containsAny(in.Description, keywords.Terms(in.Keywords, DescriptionKeywordWindow))
		},
		Suggest: func(in Input) string {
			terms := keywords.Terms(in.Keywords, DescriptionKeywordWindow)
			if len(terms) == 0 {
				return "Description contains no keyword because none could be extracted; add more topical content."
			}
			return fmt.Sprintf("Description contains none of the top keywords (%s); include one.", strings.Join(terms, ", "))
		},
	},
	{
		Name:   "content_length",
		Weight: 15,
		Pass: func(in Input) bool {
			return in.Normalized.WordCount >= MinContentWords
		},
		Suggest: func(in Input) string {
			return fmt.Sprintf("Content is %d words; expand to at least %d words.", in.Normalized.WordCount, MinContentWords)
		},
	},
	{
		Name:   "keyword_density",
		Weight: 15,
		Pass: func(in Input) bool {
			if len(in.Keywords) == 0 {
				return false
			}
			d := in.Keywords[0].DensityPct
			return d >= MinDensityPct && d <= MaxDensityPct
		},
		Suggest: func(in Input) string {
			if len(in.Keywords) == 0 {
				return fmt.Sprintf("No keywords found; aim for a top keyword density of %.1f%%-%.1f%%.", MinDensityPct, MaxDensityPct)
			}
			top := in.Keywords[0]
			if top.DensityPct < MinDensityPct {
				return fmt.Sprintf("Top keyword %q has %.1f%% density; use it more to reach at least %.1f%%.", top.Term, top.DensityPct, MinDensityPct)
			}
			return fmt.Sprintf("Top keyword %q has %.1f%% density; reduce it to at most %.1f%% to avoid keyword stuffing.", top.Term, top.DensityPct, MaxDensityPct)
		},
	},
	{
		Name:   "keyword_diversity",
		Weight: 10,
		Pass: func(in Input) bool {
			return len(in.Keywords) >= MinDistinctKeywords
		},
		Suggest: func(in Input) string {
			return fmt.Sprintf("Only %d distinct keywords found; cover at least %d related terms.", len(in.Keywords), MinDistinctKeywords)
		},
	},
	{
		Name:   "readability",
		Weight: 5,
		Pass: func(in Input) bool {
			return AverageWordsPerSentence(in.Normalized) <= MaxWordsPerSentence
		},
		Suggest: func(in Input) string {
			return fmt.Sprintf("Sentences average %.1f words; keep them under %.0f.", AverageWordsPerSentence(in.Normalized), MaxWordsPerSentence)
		},
	},
}

// AverageWordsPerSentence returns 0 when there are no sentences.
func AverageWordsPerSentence(n types.NormalizedText) float64 {
	if len(n.Sentences) == 0 {
		return 0
	}
	return float64(n.WordCount) / float64(len(n.Sentences))
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if keywords.ContainsTerm(text, term) {
			return true
		}
	}
	return false
}
