package generator

import (
	"errors"
	"strings"

	"github.com/edgecomet/seometa/pkg/types"
)

// Input errors. The engine is never invoked when CheckInput fails.
var (
	ErrMissingTitle = errors.New("title is required")
	ErrMissingBody  = errors.New("body is required")
)

// CheckInput rejects content without the mandatory title and body.
func CheckInput(source types.SourceContent) error {
	if strings.TrimSpace(source.Title) == "" {
		return ErrMissingTitle
	}
	if strings.TrimSpace(source.Body) == "" {
		return ErrMissingBody
	}
	return nil
}
