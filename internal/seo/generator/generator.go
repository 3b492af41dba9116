// Package generator runs the metadata pipeline: normalize, extract keywords,
// compose title and description, score, and attach social metadata.
package generator

import (
	"github.com/edgecomet/seometa/internal/seo/compose"
	"github.com/edgecomet/seometa/internal/seo/keywords"
	"github.com/edgecomet/seometa/internal/seo/normalize"
	"github.com/edgecomet/seometa/internal/seo/scoring"
	"github.com/edgecomet/seometa/internal/seo/validator"
	"github.com/edgecomet/seometa/pkg/types"
)

// Site describes the publishing site used for canonical and social metadata.
type Site struct {
	BaseURL       string
	Name          string
	TwitterHandle string
	DefaultImage  string
}

// Options configures a Generator. Zero values fall back to defaults.
type Options struct {
	Stopwords       keywords.Stopwords
	MaxKeywords     int
	PreviewKeywords int
	Site            Site
	Rubric          []scoring.Check
}

// Generator holds the read-only state shared by all requests. It is safe
// for concurrent use.
type Generator struct {
	stopwords       keywords.Stopwords
	maxKeywords     int
	previewKeywords int
	site            Site
	rubric          []scoring.Check
}

// Result is a generated metadata bundle plus the values it was scored on.
type Result struct {
	Metadata *types.SEOMetadata
	Analysis *types.Analysis
}

// New builds a Generator. An empty stopword set selects the built-in English list.
func New(opts Options) *Generator {
	g := &Generator{
		stopwords:       opts.Stopwords,
		maxKeywords:     opts.MaxKeywords,
		previewKeywords: opts.PreviewKeywords,
		site:            opts.Site,
		rubric:          opts.Rubric,
	}
	if g.stopwords.Len() == 0 {
		g.stopwords, _ = keywords.DefaultStopwords(keywords.LanguageEnglish)
	}
	if g.maxKeywords <= 0 {
		g.maxKeywords = types.DefaultMaxKeywords
	}
	if g.previewKeywords <= 0 {
		g.previewKeywords = types.DefaultPreviewKeywords
	}
	if g.rubric == nil {
		g.rubric = scoring.Rubric
	}
	return g
}

// Generate runs the full pipeline. It assumes CheckInput has passed and never
// fails: sparse content degrades to fallback metadata.
func (g *Generator) Generate(source types.SourceContent) *Result {
	normalized := normalize.Normalize(source.Body)
	kws := keywords.Extract(normalized, g.stopwords, g.maxKeywords, compose.CleanText(source.Title))
	composed := compose.ComposeNormalized(source, normalized, kws)

	scored := scoring.ScoreWith(g.rubric, scoring.Input{
		Title:       composed.Title,
		Description: composed.Description,
		Normalized:  normalized,
		Keywords:    kws,
	})

	metadata := &types.SEOMetadata{
		Title:       composed.Title,
		Description: composed.Description,
		Keywords:    keywords.Terms(kws, -1),
		Score:       scored.Score,
		Suggestions: scored.Suggestions,
	}
	g.attachSocial(metadata, source)

	return &Result{
		Metadata: metadata,
		Analysis: &types.Analysis{
			WordCount:           normalized.WordCount,
			SentenceCount:       len(normalized.Sentences),
			AvgWordsPerSentence: roundTenth(scoring.AverageWordsPerSentence(normalized)),
			Keywords:            kws,
			Checks:              scored.Checks,
		},
	}
}

// Preview returns the lightweight subset of Generate with only the top
// preview keywords.
func (g *Generator) Preview(source types.SourceContent) *types.PreviewResponse {
	metadata := g.Generate(source).Metadata

	kws := metadata.Keywords
	if len(kws) > g.previewKeywords {
		kws = kws[:g.previewKeywords]
	}

	return &types.PreviewResponse{
		Title:       metadata.Title,
		Description: metadata.Description,
		Keywords:    kws,
		Score:       metadata.Score,
		Suggestions: metadata.Suggestions,
	}
}

// Validate checks a bundle with this generator's keyword limit.
func (g *Generator) Validate(metadata *types.SEOMetadata) types.ValidationResult {
	return validator.Validate(metadata, validator.Options{MaxKeywords: g.maxKeywords})
}

// MaxKeywords returns the configured top-N.
func (g *Generator) MaxKeywords() int {
	return g.maxKeywords
}

func roundTenth(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
