// Package annotation defines the span model shared by the de-identification
// pipeline: candidate annotations produced by detectors, resolved annotations
// that survived conflict resolution, and tagged annotations carrying their
// final display placeholder.
package annotation

import (
	"fmt"
	"strings"
)

// Span is a half-open character range [Start, End) over a document's text.
// Text is the literal substring the span covers.
type Span struct {
	Start int
	End   int
	Text  string
}

// Len returns the number of characters the span covers.
func (s Span) Len() int { return s.End - s.Start }

// CheckSpan verifies that s is a valid, non-empty range over text and that
// its Text field matches the covered substring. Zero-length spans are
// rejected here so they can never reach the renderer.
func CheckSpan(text string, s Span) error {
	if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
		return fmt.Errorf("span [%d, %d) out of range for text of length %d", s.Start, s.End, len(text))
	}
	if got := text[s.Start:s.End]; got != s.Text {
		return fmt.Errorf("span [%d, %d) text %q does not match document slice %q", s.Start, s.End, s.Text, got)
	}
	return nil
}

// Annotation is a candidate entity span proposed by a detector. Priority is
// the detector group order: a lower value takes precedence during conflict
// resolution.
type Annotation struct {
	Span
	Tag      string
	Detector string
	Priority int
}

// Tagged is a resolved annotation with its display placeholder assigned,
// e.g. PATIENT or LOCATIE-1.
type Tagged struct {
	Annotation
	DisplayTag string
}

// Overlaps reports whether a and b share at least one character index.
func Overlaps(a, b Span) bool {
	return a.Start < b.End && b.Start < a.End
}

// Contains reports whether outer covers every index of inner.
func Contains(outer, inner Span) bool {
	return outer.Start <= inner.Start && inner.End <= outer.End
}

// StrictlyContains reports whether outer covers inner and is larger.
func StrictlyContains(outer, inner Span) bool {
	return Contains(outer, inner) && outer.Len() > inner.Len()
}

// AdjacentOver reports whether a and b touch, or are separated only by
// connector runes, within text. Connectors are typically whitespace and
// hyphens, so the parts of a compound surname can be fused into one span.
func AdjacentOver(a, b Span, text string, connectors string) bool {
	lo, hi := a, b
	if b.Start < a.Start {
		lo, hi = b, a
	}
	if lo.End > hi.Start {
		return false
	}
	for _, r := range text[lo.End:hi.Start] {
		if !strings.ContainsRune(connectors, r) {
			return false
		}
	}
	return true
}
