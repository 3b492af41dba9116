package htmlprocessor

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/edgecomet/seometa/internal/common/urlutil"
	"github.com/edgecomet/seometa/pkg/types"
)

// Page is the result of importing a complete HTML page.
type Page struct {
	Source    types.SourceContent
	Canonical string
	Noindex   bool
}

// headMeta collects the <head> values used to fill gaps left by readability.
type headMeta struct {
	title       string
	description string
	image       string
	author      string
	published   string
	canonical   string
	robots      []string
	googlebot   []string
}

var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ExtractPage builds SourceContent from a complete HTML page. The main article is
// located with readability; <head> meta tags fill fields readability left empty.
func ExtractPage(htmlBytes []byte, pageURL string) (*Page, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(htmlBytes), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract article: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	meta := readHeadMeta(doc)

	src := types.SourceContent{
		Title:       collapseWhitespace(article.Title),
		Body:        strings.Join(TextBlocks([]byte(article.Content)), "\n\n"),
		Excerpt:     collapseWhitespace(article.Excerpt),
		CoverImage:  strings.TrimSpace(article.Image),
		Author:      collapseWhitespace(article.Byline),
		PublishedAt: article.PublishedTime,
	}

	if src.Title == "" {
		src.Title = meta.title
	}
	if src.Excerpt == "" {
		src.Excerpt = meta.description
	}
	if src.CoverImage == "" {
		src.CoverImage = meta.image
	}
	if src.Author == "" {
		src.Author = meta.author
	}
	if src.PublishedAt == nil {
		src.PublishedAt = parsePublished(meta.published)
	}
	src.CoverImage = resolveURL(src.CoverImage, parsedURL)

	canonical := resolveURL(meta.canonical, parsedURL)
	// A canonical on another site says nothing about this page's slug.
	slugSource := parsedURL
	if canonical != "" && (pageURL == "" || urlutil.SameSite(canonical, pageURL)) {
		if cu, err := url.Parse(canonical); err == nil {
			slugSource = cu
		}
	}
	src.Slug = slugFromPath(slugSource.Path)

	return &Page{
		Source:    src,
		Canonical: canonical,
		Noindex:   meta.blocked(),
	}, nil
}

func readHeadMeta(doc *goquery.Document) headMeta {
	m := headMeta{
		title: collapseWhitespace(doc.Find("head title").First().Text()),
	}

	doc.Find("head meta").Each(func(_ int, s *goquery.Selection) {
		key := strings.ToLower(strings.TrimSpace(s.AttrOr("name", s.AttrOr("property", ""))))
		content := collapseWhitespace(s.AttrOr("content", ""))
		if content == "" {
			return
		}

		switch key {
		case "description", "og:description":
			if m.description == "" {
				m.description = content
			}
		case "og:title":
			if m.title == "" {
				m.title = content
			}
		case "og:image", "twitter:image":
			if m.image == "" {
				m.image = content
			}
		case "author", "article:author":
			if m.author == "" {
				m.author = content
			}
		case "article:published_time", "date":
			if m.published == "" {
				m.published = content
			}
		case "robots":
			m.robots = append(m.robots, content)
		case "googlebot":
			m.googlebot = append(m.googlebot, content)
		}
	})

	m.canonical = strings.TrimSpace(doc.Find(`head link[rel="canonical"]`).First().AttrOr("href", ""))
	return m
}

// blocked reports whether robots meta tags forbid indexing.
// Googlebot-specific tags take precedence over generic robots tags.
func (m headMeta) blocked() bool {
	directives := m.robots
	if len(m.googlebot) > 0 {
		directives = m.googlebot
	}
	for _, content := range directives {
		if containsBlockingDirective(content) {
			return true
		}
	}
	return false
}

func parsePublished(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

func resolveURL(href string, base *url.URL) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// slugFromPath returns the last non-empty path segment without extension.
func slugFromPath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
