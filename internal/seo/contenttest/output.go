package contenttest

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/edgecomet/seometa/pkg/types"
)

// PrintReport writes a human readable report to w.
func PrintReport(w io.Writer, r *Report) {
	fmt.Fprintf(w, "\n=== Content: %s ===\n", r.Path)
	fmt.Fprintf(w, "Words: %d, sentences: %d, avg words/sentence: %.1f\n",
		r.Analysis.WordCount, r.Analysis.SentenceCount, r.Analysis.AvgWordsPerSentence)
	fmt.Fprintln(w)

	printField(w, "Title", r.Metadata.Title, types.TitleTargetLength)
	printField(w, "Description", r.Metadata.Description, types.DescriptionTarget)
	if r.Metadata.Canonical != "" {
		fmt.Fprintf(w, "Canonical: %s\n", r.Metadata.Canonical)
	}

	fmt.Fprintln(w)
	printKeywords(w, r.Analysis.Keywords)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Score: %d/100\n", r.Metadata.Score)
	printChecks(w, r.Analysis.Checks)

	if len(r.Metadata.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range r.Metadata.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}

	fmt.Fprintln(w)
	printValidation(w, r.Validation)
}

func printField(w io.Writer, name, value string, target int) {
	fmt.Fprintf(w, "%s: %s\n", name, value)
	fmt.Fprintf(w, "  (%d/%d characters)\n", utf8.RuneCountInString(value), target)
}

func printKeywords(w io.Writer, kws []types.Keyword) {
	if len(kws) == 0 {
		fmt.Fprintln(w, "Keywords: (none)")
		return
	}

	width := 0
	for _, kw := range kws {
		if n := utf8.RuneCountInString(kw.Term); n > width {
			width = n
		}
	}

	fmt.Fprintln(w, "Keywords:")
	for i, kw := range kws {
		fmt.Fprintf(w, "  %2d. %-*s  x%d  %s\n", i+1, width, kw.Term, kw.Frequency, formatDensity(kw.DensityPct))
	}
}

func printChecks(w io.Writer, checks []types.CheckResult) {
	for _, c := range checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "  [%s] %-20s %3d\n", status, c.Name, c.Weight)
	}
}

func printValidation(w io.Writer, v types.ValidationResult) {
	if v.Valid {
		fmt.Fprintln(w, "Validation: ok")
	} else {
		fmt.Fprintf(w, "Validation: FAILED (%s)\n", pluralize(len(v.Errors), "error"))
		for _, e := range v.Errors {
			fmt.Fprintf(w, "- %s: %s\n", e.Field, e.Message)
		}
	}

	if len(v.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings (%d):\n", len(v.Warnings))
		for _, e := range v.Warnings {
			fmt.Fprintf(w, "- %s: %s\n", e.Field, e.Message)
		}
	}
}

// formatDensity formats a density percentage with one decimal.
func formatDensity(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Summary is a one-line outcome used when testing several files.
func Summary(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: score %d", r.Path, r.Metadata.Score)
	if r.Validation.Valid {
		b.WriteString(", ok")
	} else {
		fmt.Fprintf(&b, ", %s", pluralize(len(r.Validation.Errors), "error"))
	}
	return b.String()
}
