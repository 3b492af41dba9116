// Package frontmatter splits markdown files into YAML front matter and body.
package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/edgecomet/seometa/internal/seo/normalize"
	"github.com/edgecomet/seometa/pkg/types"
)

var delimiter = []byte("---")

// document is the accepted front matter layout. Unknown keys such as tags or
// draft flags are ignored since front matter is shared with other tools.
type document struct {
	types.SourceContent `yaml:",inline"`
	Description         string `yaml:"description"`
}

// Parse reads optional front matter from data and returns the resulting
// content. Without a title the first markdown heading is used; description
// is accepted as an alias for excerpt.
func Parse(data []byte) (types.SourceContent, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	meta, body, found := split(data)

	var doc document
	if found {
		if err := yaml.Unmarshal(meta, &doc); err != nil {
			return types.SourceContent{}, fmt.Errorf("failed to parse front matter: %w", err)
		}
	}

	source := doc.SourceContent
	source.Body = string(body)
	if source.Excerpt == "" {
		source.Excerpt = doc.Description
	}
	if source.Title == "" {
		source.Title = normalize.FirstHeading(source.Body)
	}
	return source, nil
}

// split returns the front matter block and the body. found is false when data
// does not open with a "---" line or the block is never closed.
func split(data []byte) (meta, body []byte, found bool) {
	first, rest, ok := cutLine(data)
	if !ok || !bytes.Equal(bytes.TrimSpace(first), delimiter) {
		return nil, data, false
	}

	offset := 0
	remaining := rest
	for len(remaining) > 0 {
		line, next, _ := cutLine(remaining)
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), delimiter) {
			return rest[:offset], next, true
		}
		offset += len(remaining) - len(next)
		remaining = next
	}
	return nil, data, false
}

func cutLine(data []byte) (line, rest []byte, hadNewline bool) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], data[i+1:], true
	}
	return data, nil, false
}
