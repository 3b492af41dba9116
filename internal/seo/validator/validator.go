// Package validator checks a metadata bundle against hard publishing
// constraints. It does not depend on how the bundle was produced.
package validator

import (
	"net/url"
	"strings"

	"github.com/edgecomet/seometa/internal/seo/normalize"
	"github.com/edgecomet/seometa/pkg/types"
)

// Options tunes the soft checks. The zero value uses the defaults.
type Options struct {
	// MaxKeywords is the configured top-N; longer keyword lists draw a warning.
	MaxKeywords int
}

// Validate never fails: every problem is reported in the returned result.
// Errors set Valid to false; warnings are advisory.
func Validate(metadata *types.SEOMetadata, opts Options) types.ValidationResult {
	ic := NewIssueCollector()

	if metadata == nil {
		ic.Add("metadata", "metadata is required")
		return ic.Result()
	}

	validateTitle(ic, metadata.Title)
	validateDescription(ic, metadata.Description)
	validateKeywords(ic, metadata.Keywords, opts.MaxKeywords)
	validateScore(ic, metadata.Score)
	validateSocial(ic, metadata)

	return ic.Result()
}

func validateTitle(ic *IssueCollector, title string) {
	n := normalize.RuneLen(title)
	switch {
	case strings.TrimSpace(title) == "":
		ic.Add("title", "title must not be empty")
	case n > types.TitleHardLength:
		ic.Add("title", "title is %d characters; the limit is %d", n, types.TitleHardLength)
	case n > types.TitleTargetLength:
		ic.AddWarning("title", "title is %d characters; search engines usually truncate after %d", n, types.TitleTargetLength)
	case n < types.TitleMinLength:
		ic.AddWarning("title", "title is %d characters; aim for at least %d", n, types.TitleMinLength)
	}
}

func validateDescription(ic *IssueCollector, description string) {
	n := normalize.RuneLen(description)
	switch {
	case strings.TrimSpace(description) == "":
		ic.Add("description", "description must not be empty")
	case n > types.DescriptionHardLimit:
		ic.Add("description", "description is %d characters; the limit is %d", n, types.DescriptionHardLimit)
	case n > types.DescriptionTarget:
		ic.AddWarning("description", "description is %d characters; search engines usually truncate after %d", n, types.DescriptionTarget)
	case n < types.DescriptionMinLength:
		ic.AddWarning("description", "description is %d characters; aim for at least %d", n, types.DescriptionMinLength)
	}
}

func validateKeywords(ic *IssueCollector, keywords []string, maxKeywords int) {
	if maxKeywords <= 0 {
		maxKeywords = types.DefaultMaxKeywords
	}

	seen := make(map[string]struct{}, len(keywords))
	nonEmpty := 0
	for i, kw := range keywords {
		term := strings.ToLower(strings.TrimSpace(kw))
		if term == "" {
			ic.AddWarning("keywords", "keyword at position %d is blank", i)
			continue
		}
		nonEmpty++
		if _, dup := seen[term]; dup {
			ic.AddWarning("keywords", "keyword %q is listed more than once", kw)
			continue
		}
		seen[term] = struct{}{}
	}

	if nonEmpty == 0 {
		ic.Add("keywords", "at least one keyword is required")
		return
	}
	if len(keywords) > maxKeywords {
		ic.AddWarning("keywords", "%d keywords listed; only the top %d are used", len(keywords), maxKeywords)
	}
}

func validateScore(ic *IssueCollector, score int) {
	if score < 0 || score > 100 {
		ic.Add("score", "score %d is outside [0, 100]", score)
	}
}

func validateSocial(ic *IssueCollector, metadata *types.SEOMetadata) {
	if metadata.Canonical != "" && !isAbsoluteURL(metadata.Canonical) {
		ic.AddWarning("canonical", "canonical URL %q is not absolute", metadata.Canonical)
	}
	if metadata.OpenGraph != nil && metadata.OpenGraph.Image == "" {
		ic.AddWarning("openGraph.image", "Open Graph image is missing; shared links will render without a preview")
	}
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
