package validator

import (
	"fmt"

	"github.com/edgecomet/seometa/pkg/types"
)

// IssueCollector accumulates field errors and warnings in the order they are found.
type IssueCollector struct {
	errors   []types.FieldIssue
	warnings []types.FieldIssue
}

func NewIssueCollector() *IssueCollector {
	return &IssueCollector{
		errors:   make([]types.FieldIssue, 0),
		warnings: make([]types.FieldIssue, 0),
	}
}

// Add records an error with a formatted message.
func (ic *IssueCollector) Add(field, format string, args ...interface{}) {
	ic.errors = append(ic.errors, types.FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
}

// AddWarning records a warning with a formatted message.
func (ic *IssueCollector) AddWarning(field, format string, args ...interface{}) {
	ic.warnings = append(ic.warnings, types.FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (ic *IssueCollector) HasErrors() bool {
	return len(ic.errors) > 0
}

func (ic *IssueCollector) Errors() []types.FieldIssue {
	return ic.errors
}

func (ic *IssueCollector) Warnings() []types.FieldIssue {
	return ic.warnings
}

// Result converts the collected issues into a ValidationResult.
func (ic *IssueCollector) Result() types.ValidationResult {
	return types.ValidationResult{
		Valid:    !ic.HasErrors(),
		Errors:   ic.errors,
		Warnings: ic.warnings,
	}
}
