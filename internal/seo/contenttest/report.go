// Package contenttest runs the generator over a single content file and
// reports the result. It backs the -t mode of seo-service and seoctl.
package contenttest

import (
	"fmt"
	"os"

	"github.com/edgecomet/seometa/internal/seo/frontmatter"
	"github.com/edgecomet/seometa/internal/seo/generator"
	"github.com/edgecomet/seometa/pkg/types"
)

// Report is the outcome of testing one content file.
type Report struct {
	Path       string
	Source     types.SourceContent
	Metadata   *types.SEOMetadata
	Analysis   *types.Analysis
	Validation types.ValidationResult
}

// Publishable reports whether the generated metadata passed validation.
func (r *Report) Publishable() bool {
	return r.Validation.Valid
}

// Run reads a markdown file with optional front matter and generates
// metadata for it.
func Run(path string, gen *generator.Generator) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	source, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}

	return Build(path, source, gen)
}

// Build generates and validates metadata for an already parsed source.
func Build(path string, source types.SourceContent, gen *generator.Generator) (*Report, error) {
	if err := generator.CheckInput(source); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result := gen.Generate(source)
	return &Report{
		Path:       path,
		Source:     source,
		Metadata:   result.Metadata,
		Analysis:   result.Analysis,
		Validation: gen.Validate(result.Metadata),
	}, nil
}
