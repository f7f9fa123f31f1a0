package lint

import (
	"slices"
	"strings"
)

// FixResult is the outcome of applying suggested fixes.
type FixResult struct {
	Output  string      `json:"output"`
	Applied []Violation `json:"applied"`
	Skipped []Violation `json:"skipped"`
}

// ApplyFixes applies the fixes carried by violations to source. Fixes are
// accepted in order; a fix whose edits overlap an accepted fix is skipped.
// Violations without a fix are ignored.
func ApplyFixes(source string, violations []Violation) FixResult {
	sorted := slices.Clone(violations)
	SortViolations(sorted)

	var (
		result   FixResult
		accepted []TextEdit
	)
	for _, v := range sorted {
		if v.Fix == nil || len(v.Fix.Edits) == 0 {
			continue
		}
		if !editsValid(source, v.Fix.Edits) || overlapsAny(v.Fix.Edits, accepted) {
			result.Skipped = append(result.Skipped, v)
			continue
		}
		accepted = append(accepted, v.Fix.Edits...)
		result.Applied = append(result.Applied, v)
	}

	result.Output = applyEdits(source, accepted)
	return result
}

func editsValid(source string, edits []TextEdit) bool {
	for i, e := range edits {
		if e.Span.Start.Offset < 0 || e.Span.End.Offset > len(source) || e.Span.Len() < 0 {
			return false
		}
		if overlapsAny(edits[i+1:], edits[i:i+1]) {
			return false
		}
	}
	return true
}

func overlapsAny(edits, accepted []TextEdit) bool {
	for _, e := range edits {
		for _, a := range accepted {
			if e.Span.Overlaps(a.Span) {
				return true
			}
		}
	}
	return false
}

// applyEdits applies non-overlapping edits from the rightmost backwards so
// earlier offsets stay valid.
func applyEdits(source string, edits []TextEdit) string {
	if len(edits) == 0 {
		return source
	}
	ordered := slices.Clone(edits)
	slices.SortFunc(ordered, func(a, b TextEdit) int {
		return b.Span.Start.Offset - a.Span.Start.Offset
	})

	out := source
	for _, e := range ordered {
		var sb strings.Builder
		sb.WriteString(out[:e.Span.Start.Offset])
		sb.WriteString(e.NewText)
		sb.WriteString(out[e.Span.End.Offset:])
		out = sb.String()
	}
	return out
}
