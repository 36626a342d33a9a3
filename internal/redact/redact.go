// Package redact renders the final annotation set into the output text
// views. Rendering is a pure function of the original text and the tagged
// annotations: it performs no further detection or merging.
package redact

import (
	"fmt"
	"sort"
	"strings"

	"veil/internal/annotation"
)

// OverlapError reports overlapping spans reaching the renderer. This is an
// internal invariant violation: resolution must have produced a
// non-overlapping set, so processing of the document is aborted rather than
// emitting partially redacted text.
type OverlapError struct {
	A, B annotation.Span
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("overlapping spans reached the renderer: [%d, %d) and [%d, %d)",
		e.A.Start, e.A.End, e.B.Start, e.B.End)
}

// Result holds the three derived text views plus the final annotation set
// sorted by start position.
type Result struct {
	// Deidentified is the original text with every span replaced by its
	// bracketed display placeholder, e.g. [PATIENT] or [LOCATIE-1].
	Deidentified string
	// Intext is the original text with every span wrapped in un-suffixed
	// base tags, e.g. <PERSOON>Peter de Visser</PERSOON>.
	Intext string
	// Original is the untouched input, retained for audit collaborators.
	Original string
	// Annotations are the tagged annotations sorted by Start.
	Annotations []annotation.Tagged
}

// Render produces the three text views. The annotations must be pairwise
// non-overlapping; substitutions are applied right to left so earlier
// offsets stay valid while later spans are replaced.
func Render(text string, anns []annotation.Tagged) (Result, error) {
	sorted := make([]annotation.Tagged, len(anns))
	copy(sorted, anns)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i := 1; i < len(sorted); i++ {
		if annotation.Overlaps(sorted[i-1].Span, sorted[i].Span) {
			return Result{}, &OverlapError{A: sorted[i-1].Span, B: sorted[i].Span}
		}
	}
	for _, a := range sorted {
		if err := annotation.CheckSpan(text, a.Span); err != nil {
			return Result{}, fmt.Errorf("render: %w", err)
		}
	}

	deid := text
	intext := text
	for i := len(sorted) - 1; i >= 0; i-- {
		a := sorted[i]
		deid = deid[:a.Start] + "[" + a.DisplayTag + "]" + deid[a.End:]
		base := baseTag(a)
		intext = intext[:a.Start] + "<" + base + ">" + a.Text + "</" + base + ">" + intext[a.End:]
	}

	return Result{
		Deidentified: deid,
		Intext:       intext,
		Original:     text,
		Annotations:  sorted,
	}, nil
}

// baseTag is the upper-cased entity type without the numeric suffix.
func baseTag(a annotation.Tagged) string {
	return strings.ToUpper(a.Tag)
}
