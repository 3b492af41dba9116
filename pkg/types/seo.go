package types

import "time"

// Length limits used by the composer, scoring rubric and validator.
// Targets drive generation and scoring; hard limits block publishing.
const (
	TitleMinLength       = 10
	TitleTargetLength    = 60
	TitleHardLength      = 70
	DescriptionMinLength = 50
	DescriptionTarget    = 160
	DescriptionHardLimit = 200

	DefaultMaxKeywords     = 10
	DefaultPreviewKeywords = 5
)

// SourceContent is the caller-supplied content metadata is generated from.
// Title and Body are mandatory; everything else is optional.
type SourceContent struct {
	Title       string     `json:"title" yaml:"title"`
	Body        string     `json:"body" yaml:"-"`
	Excerpt     string     `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	CoverImage  string     `json:"coverImage,omitempty" yaml:"cover_image,omitempty"`
	Author      string     `json:"author,omitempty" yaml:"author,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty" yaml:"published_at,omitempty"`
	Slug        string     `json:"slug,omitempty" yaml:"slug,omitempty"`
}

// NormalizedText is the plain-text view of a body.
// WordCount always equals len(Words).
type NormalizedText struct {
	PlainText string   `json:"plainText"`
	Words     []string `json:"words"`
	Sentences []string `json:"sentences"`
	WordCount int      `json:"wordCount"`
}

// Keyword is a ranked term of one to three lowercase words.
type Keyword struct {
	Term       string  `json:"term"`
	Frequency  int     `json:"frequency"`
	DensityPct float64 `json:"densityPct"`
}

// OpenGraph holds og:* properties for the generated page.
type OpenGraph struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Type          string `json:"type"`
	URL           string `json:"url,omitempty"`
	Image         string `json:"image,omitempty"`
	SiteName      string `json:"siteName,omitempty"`
	PublishedTime string `json:"publishedTime,omitempty"`
	Author        string `json:"author,omitempty"`
}

// TwitterCard holds twitter:* properties for the generated page.
type TwitterCard struct {
	Card        string `json:"card"`
	Site        string `json:"site,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// SEOMetadata is the generated metadata bundle. It is built once per call and
// never mutated afterwards; callers that need changes regenerate.
type SEOMetadata struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Keywords       []string       `json:"keywords"`
	Score          int            `json:"score"`
	Suggestions    []string       `json:"suggestions"`
	Canonical      string         `json:"canonical,omitempty"`
	OpenGraph      *OpenGraph     `json:"openGraph,omitempty"`
	Twitter        *TwitterCard   `json:"twitter,omitempty"`
	StructuredData map[string]any `json:"structuredData,omitempty"`
}

// CheckResult is the outcome of one scoring rubric check.
type CheckResult struct {
	Name       string `json:"name"`
	Weight     int    `json:"weight"`
	Passed     bool   `json:"passed"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Analysis exposes the intermediate values a score was computed from.
type Analysis struct {
	WordCount           int           `json:"wordCount"`
	SentenceCount       int           `json:"sentenceCount"`
	AvgWordsPerSentence float64       `json:"avgWordsPerSentence"`
	Keywords            []Keyword     `json:"keywords"`
	Checks              []CheckResult `json:"checks"`
}

// FieldIssue is a single validation error or warning bound to a metadata field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult reports whether a metadata bundle may be published.
// Warnings never affect Valid.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldIssue `json:"errors"`
	Warnings []FieldIssue `json:"warnings"`
}

// GenerateResponse is returned by the generate endpoints.
type GenerateResponse struct {
	Metadata   *SEOMetadata      `json:"metadata"`
	Analysis   *Analysis         `json:"analysis"`
	Validation *ValidationResult `json:"validation"`
}

// PreviewResponse is the lightweight preview payload.
type PreviewResponse struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
}
