package generator

import (
	"strings"
	"time"

	"github.com/edgecomet/seometa/pkg/types"
)

const schemaContext = "https://schema.org"

// attachSocial fills canonical, Open Graph, Twitter and JSON-LD fields.
func (g *Generator) attachSocial(m *types.SEOMetadata, source types.SourceContent) {
	m.Canonical = Canonical(g.site.BaseURL, source.Slug)

	image := source.CoverImage
	if image == "" {
		image = g.site.DefaultImage
	}

	var published string
	if source.PublishedAt != nil && !source.PublishedAt.IsZero() {
		published = source.PublishedAt.UTC().Format(time.RFC3339)
	}

	m.OpenGraph = &types.OpenGraph{
		Title:         m.Title,
		Description:   m.Description,
		Type:          "article",
		URL:           m.Canonical,
		Image:         image,
		SiteName:      g.site.Name,
		PublishedTime: published,
		Author:        source.Author,
	}

	card := "summary"
	if image != "" {
		card = "summary_large_image"
	}
	m.Twitter = &types.TwitterCard{
		Card:        card,
		Site:        twitterHandle(g.site.TwitterHandle),
		Title:       m.Title,
		Description: m.Description,
		Image:       image,
	}

	m.StructuredData = Article(m.Title, m.Description, m.Canonical, image, source.Author, published, m.Keywords)
}

// Article returns a schema.org Article payload; empty fields are omitted.
func Article(headline, description, url, imageURL, authorName, datePublished string, keywords []string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "Article",
		"headline": headline,
	}
	if description != "" {
		m["description"] = description
	}
	if url != "" {
		m["url"] = url
		m["mainEntityOfPage"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if authorName != "" {
		m["author"] = map[string]any{"@type": "Person", "name": authorName}
	}
	if datePublished != "" {
		m["datePublished"] = datePublished
	}
	if len(keywords) > 0 {
		m["keywords"] = strings.Join(keywords, ", ")
	}
	return m
}

// Canonical joins baseURL and the sanitized slug. It returns "" when either is empty.
func Canonical(baseURL, slug string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	slug = SanitizeSlug(slug)
	if base == "" || slug == "" {
		return ""
	}
	return base + "/" + slug
}

// SanitizeSlug lowercases each path segment of slug and reduces it to
// [a-z0-9-], collapsing runs of other characters into single dashes.
func SanitizeSlug(slug string) string {
	segments := strings.Split(slug, "/")
	out := segments[:0]
	for _, segment := range segments {
		if s := sanitizeSegment(segment); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

func sanitizeSegment(segment string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(segment) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

func twitterHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.HasPrefix(handle, "@") {
		return handle
	}
	return "@" + handle
}
