// Package compose derives the SEO title and meta description from source content.
package compose

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/edgecomet/seometa/internal/seo/keywords"
	"github.com/edgecomet/seometa/internal/seo/normalize"
	"github.com/edgecomet/seometa/pkg/types"
)

// descriptionFiller pads synthesized descriptions that are still too short.
const descriptionFiller = "Read the full article for details and practical advice."

// Bluemonday policies are safe for concurrent use once built.
var stripTags = bluemonday.StrictPolicy()

// Result is the composed title and description.
type Result struct {
	Title       string
	Description string
}

// Compose normalizes source.Body and derives title and description from it.
func Compose(source types.SourceContent, kws []types.Keyword) Result {
	return ComposeNormalized(source, normalize.Normalize(source.Body), kws)
}

// ComposeNormalized derives title and description from an already normalized body.
func ComposeNormalized(source types.SourceContent, normalized types.NormalizedText, kws []types.Keyword) Result {
	return Result{
		Title:       Title(source.Title, kws),
		Description: Description(source, normalized, kws),
	}
}

// Title returns the source title when it is 10-60 characters long. Longer titles
// are cut at the last word boundary within 60 characters; shorter ones get
// capitalized keyword terms appended with " - " until they reach 10 characters.
// An appended term that overflows 60 characters is cut like a long title.
func Title(raw string, kws []types.Keyword) string {
	title := CleanText(raw)

	if normalize.RuneLen(title) > types.TitleTargetLength {
		title = TruncateAtWord(title, types.TitleTargetLength, 0)
	}

	for _, kw := range kws {
		if normalize.RuneLen(title) >= types.TitleMinLength {
			break
		}
		if keywords.ContainsTerm(title, kw.Term) {
			continue
		}
		candidate := CapitalizeWords(kw.Term)
		if title != "" {
			candidate = title + " - " + candidate
		}
		if normalize.RuneLen(candidate) > types.TitleTargetLength {
			candidate = TruncateAtWord(candidate, types.TitleTargetLength, types.TitleMinLength)
		}
		title = candidate
	}

	return title
}

// Description picks, in order: an excerpt of 50-160 characters, an over-long
// excerpt cut at a word boundary, the leading body sentences, or a sentence
// synthesized from the title and the top two keywords.
func Description(source types.SourceContent, normalized types.NormalizedText, kws []types.Keyword) string {
	excerpt := normalize.Normalize(source.Excerpt).PlainText
	length := normalize.RuneLen(excerpt)

	switch {
	case length >= types.DescriptionMinLength && length <= types.DescriptionTarget:
		return excerpt
	case length > types.DescriptionTarget:
		return TruncateAtWord(excerpt, types.DescriptionTarget, types.DescriptionMinLength)
	}

	if description := fromSentences(normalized.Sentences); description != "" {
		return description
	}

	return synthesize(CleanText(source.Title), kws)
}

// CleanText strips HTML tags, decodes entities and collapses whitespace.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(stripTags.Sanitize(s))), " ")
}

// CapitalizeWords upper-cases the first letter of every word of a keyword term.
func CapitalizeWords(term string) string {
	words := strings.Fields(term)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = toUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// fromSentences joins leading sentences until the text reaches the minimum
// description length. It returns "" when the whole body is too short.
func fromSentences(sentences []string) string {
	var sb strings.Builder
	for _, sentence := range sentences {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(sentence)
		if normalize.RuneLen(sb.String()) >= types.DescriptionMinLength {
			break
		}
	}

	description := sb.String()
	if normalize.RuneLen(description) < types.DescriptionMinLength {
		return ""
	}
	return TruncateAtWord(description, types.DescriptionTarget, types.DescriptionMinLength)
}

func synthesize(title string, kws []types.Keyword) string {
	subject := strings.TrimRight(title, ".!?:;, ")
	terms := keywords.Terms(kws, 2)
	if subject == "" && len(terms) > 0 {
		subject = CapitalizeWords(terms[0])
	}
	if subject == "" {
		subject = "This article"
	}

	var description string
	switch len(terms) {
	case 0:
		description = subject + "."
	case 1:
		description = fmt.Sprintf("%s: everything you need to know about %s.", subject, terms[0])
	default:
		description = fmt.Sprintf("%s: everything you need to know about %s and %s.", subject, terms[0], terms[1])
	}

	if normalize.RuneLen(description) < types.DescriptionMinLength {
		description += " " + descriptionFiller
	}
	return TruncateAtWord(description, types.DescriptionTarget, types.DescriptionMinLength)
}
