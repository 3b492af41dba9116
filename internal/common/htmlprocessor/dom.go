package htmlprocessor

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var blockingDirectivePattern = regexp.MustCompile(`(?i)\b(noindex|none)\b`)

// skippedElements never contribute visible prose.
var skippedElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"img":      true,
	"picture":  true,
	"video":    true,
	"audio":    true,
	"canvas":   true,
	"object":   true,
	"pre":      true,
	"button":   true,
	"select":   true,
	"textarea": true,
}

// blockElements end the current text block.
var blockElements = map[string]bool{
	"address":    true,
	"article":    true,
	"aside":      true,
	"blockquote": true,
	"br":         true,
	"caption":    true,
	"dd":         true,
	"div":        true,
	"dl":         true,
	"dt":         true,
	"figcaption": true,
	"figure":     true,
	"footer":     true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
	"header":     true,
	"hr":         true,
	"li":         true,
	"main":       true,
	"nav":        true,
	"ol":         true,
	"p":          true,
	"section":    true,
	"table":      true,
	"td":         true,
	"th":         true,
	"tr":         true,
	"ul":         true,
}

// collapseWhitespace trims leading/trailing whitespace and collapses
// internal whitespace sequences to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TextBlocks parses an HTML document or fragment and returns its visible text,
// split at block-level elements. Tags, scripts, styles and images are dropped;
// entities are decoded. Empty blocks are omitted.
func TextBlocks(fragment []byte) []string {
	if len(bytes.TrimSpace(fragment)) == 0 {
		return nil
	}

	root, err := html.Parse(bytes.NewReader(fragment))
	if err != nil {
		return nil
	}

	var blocks []string
	var sb strings.Builder
	flush := func() {
		if text := collapseWhitespace(sb.String()); text != "" {
			blocks = append(blocks, text)
		}
		sb.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			return
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if skippedElements[tag] {
				return
			}
			if blockElements[tag] {
				flush()
				defer flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	flush()

	return blocks
}

// containsBlockingDirective checks if content contains "noindex" or "none" directives.
func containsBlockingDirective(content string) bool {
	return blockingDirectivePattern.MatchString(content)
}
