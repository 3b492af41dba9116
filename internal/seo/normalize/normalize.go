// Package normalize turns markdown or HTML-ish content into plain text split
// into sentences and words.
package normalize

import (
	"bytes"
	"html"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/edgecomet/seometa/internal/common/htmlprocessor"
	"github.com/edgecomet/seometa/pkg/types"
)

// markdown is safe for concurrent use; parsers are created per call.
var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Normalize strips markup from body and returns its plain text, sentences and words.
// It never fails: an empty body yields an empty NormalizedText.
func Normalize(body string) types.NormalizedText {
	blocks := Blocks(body)

	sentences := make([]string, 0, len(blocks))
	for _, block := range blocks {
		sentences = append(sentences, SplitSentences(block)...)
	}

	words := make([]string, 0)
	for _, block := range blocks {
		words = append(words, Words(block)...)
	}

	return types.NormalizedText{
		PlainText: strings.Join(blocks, " "),
		Words:     words,
		Sentences: sentences,
		WordCount: len(words),
	}
}

// Blocks renders body to plain text blocks, one per paragraph, heading, list
// item, table cell or HTML block element.
func Blocks(body string) []string {
	if strings.TrimSpace(body) == "" {
		return nil
	}

	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	c := &collector{source: source}
	_ = ast.Walk(doc, c.visit)
	c.flush()

	return c.blocks
}

type collector struct {
	source []byte
	blocks []string
	buf    strings.Builder
}

func (c *collector) flush() {
	block := strings.Join(strings.Fields(html.UnescapeString(c.buf.String())), " ")
	if block != "" {
		c.blocks = append(c.blocks, block)
	}
	c.buf.Reset()
}

func (c *collector) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		if n.Type() == ast.TypeBlock {
			c.flush()
		}
		return ast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *ast.Text:
		c.buf.Write(node.Segment.Value(c.source))
		if node.SoftLineBreak() || node.HardLineBreak() {
			c.buf.WriteByte(' ')
		}
	case *ast.String:
		c.buf.Write(node.Value)
	case *ast.RawHTML:
		c.buf.WriteByte(' ')
		return ast.WalkSkipChildren, nil
	case *ast.Image, *ast.AutoLink:
		return ast.WalkSkipChildren, nil
	case *ast.Link:
		if looksLikeURL(c.childText(node)) {
			return ast.WalkSkipChildren, nil
		}
	case *ast.HTMLBlock:
		c.flush()
		c.blocks = append(c.blocks, htmlprocessor.TextBlocks(c.htmlBlockSource(node))...)
		return ast.WalkSkipChildren, nil
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		return ast.WalkSkipChildren, nil
	default:
		if n.Type() == ast.TypeBlock {
			c.flush()
		}
	}

	return ast.WalkContinue, nil
}

func (c *collector) htmlBlockSource(node *ast.HTMLBlock) []byte {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(c.source))
	}
	if node.HasClosure() {
		buf.Write(node.ClosureLine.Value(c.source))
	}
	return buf.Bytes()
}

// childText concatenates the text segments below n.
func (c *collector) childText(n ast.Node) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(c.source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// looksLikeURL reports whether a link label is a bare address rather than prose.
func looksLikeURL(label string) bool {
	if label == "" {
		return true
	}
	lower := strings.ToLower(label)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "www.") || strings.HasPrefix(lower, "mailto:") {
		return true
	}
	return !strings.ContainsFunc(label, unicode.IsSpace) &&
		strings.Contains(label, "/") && strings.Contains(label, ".")
}

// FirstHeading returns the plain text of the first heading in body, or "".
func FirstHeading(body string) string {
	source := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || heading != "" {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			c := &collector{source: source}
			heading = strings.Join(strings.Fields(html.UnescapeString(c.childText(h))), " ")
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return heading
}
