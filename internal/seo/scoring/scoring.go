// Package scoring rates composed metadata against a fixed weighted rubric.
package scoring

import (
	"sort"

	"github.com/edgecomet/seometa/pkg/types"
)

// Result is the outcome of Score.
type Result struct {
	Score       int
	Suggestions []string
	Checks      []types.CheckResult
}

// Score evaluates in against Rubric. Failed checks contribute nothing and
// yield one suggestion each, ordered by descending weight with ties kept in
// rubric order.
func Score(in Input) Result {
	return ScoreWith(Rubric, in)
}

// ScoreWith evaluates in against an arbitrary rubric table.
func ScoreWith(rubric []Check, in Input) Result {
	result := Result{
		Suggestions: make([]string, 0),
		Checks:      make([]types.CheckResult, 0, len(rubric)),
	}

	type failure struct {
		weight     int
		suggestion string
	}
	var failures []failure

	for _, check := range rubric {
		cr := types.CheckResult{Name: check.Name, Weight: check.Weight, Passed: check.Pass(in)}
		if cr.Passed {
			result.Score += check.Weight
		} else {
			cr.Suggestion = check.Suggest(in)
			failures = append(failures, failure{weight: check.Weight, suggestion: cr.Suggestion})
		}
		result.Checks = append(result.Checks, cr)
	}

	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].weight > failures[j].weight
	})
	for _, f := range failures {
		result.Suggestions = append(result.Suggestions, f.suggestion)
	}

	result.Score = clamp(result.Score, 0, 100)
	return result
}

// MaxScore is the sum of the rubric weights.
func MaxScore(rubric []Check) int {
	total := 0
	for _, check := range rubric {
		total += check.Weight
	}
	return total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
