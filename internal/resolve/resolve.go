// Package resolve turns an unordered, possibly-overlapping set of candidate
// annotations into a non-overlapping resolved set.
//
// The resolver is a greedy left-to-right sweep over a fixed sort order. The
// sort order is the contract: it makes the result independent of the order
// in which detectors emitted their candidates.
package resolve

import (
	"sort"

	"veil/internal/annotation"
)

// DefaultConnectors are the characters allowed between two same-tag
// annotations for them to fuse into one: whitespace and hyphen.
const DefaultConnectors = " \t\n-"

// Resolver resolves span conflicts between candidate annotations.
type Resolver struct {
	// Connectors holds the runes that may separate two same-tag
	// annotations that should be fused into a single span.
	Connectors string
}

// New returns a Resolver with the default connector set.
func New() *Resolver {
	return &Resolver{Connectors: DefaultConnectors}
}

// Resolve applies the sweep to the candidate set and returns the accepted
// annotations sorted by start position. The result is pairwise
// non-overlapping.
func (r *Resolver) Resolve(text string, candidates *annotation.Set) []annotation.Annotation {
	cands := candidates.Sorted()
	if len(cands) == 0 {
		return nil
	}

	// Fixed tie-break order: start ascending, longer spans first, then
	// detector group priority, then tag. Everything downstream depends on
	// this order being total and deterministic.
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return a.Tag < b.Tag
	})

	accepted := make([]annotation.Annotation, 0, len(cands))
	for _, c := range cands {
		overlapping := overlappingIndexes(accepted, c)
		if len(overlapping) == 0 {
			accepted = append(accepted, c)
			continue
		}
		if replaceable(accepted, overlapping, c) {
			accepted = removeIndexes(accepted, overlapping)
			accepted = append(accepted, c)
			continue
		}
		// Accepted annotation contains c, or the spans partially overlap:
		// the earlier-accepted annotation wins either way.
	}

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].Start != accepted[j].Start {
			return accepted[i].Start < accepted[j].Start
		}
		return accepted[i].End < accepted[j].End
	})

	return r.fuseAdjacent(text, accepted)
}

// overlappingIndexes returns the indexes of accepted annotations whose
// spans overlap c.
func overlappingIndexes(accepted []annotation.Annotation, c annotation.Annotation) []int {
	var out []int
	for i, a := range accepted {
		if annotation.Overlaps(a.Span, c.Span) {
			out = append(out, i)
		}
	}
	return out
}

// replaceable reports whether c strictly contains every overlapped accepted
// annotation while carrying a higher precedence (lower priority number) than
// each of them. In that case the larger, more specific match subsumes the
// contained ones.
func replaceable(accepted []annotation.Annotation, overlapping []int, c annotation.Annotation) bool {
	for _, i := range overlapping {
		a := accepted[i]
		if !annotation.StrictlyContains(c.Span, a.Span) {
			return false
		}
		if c.Priority >= a.Priority {
			return false
		}
	}
	return true
}

func removeIndexes(anns []annotation.Annotation, idx []int) []annotation.Annotation {
	drop := make(map[int]bool, len(idx))
	for _, i := range idx {
		drop[i] = true
	}
	out := anns[:0]
	for i, a := range anns {
		if !drop[i] {
			out = append(out, a)
		}
	}
	return out
}

// fuseAdjacent merges runs of same-tag annotations separated only by
// connector characters into a single annotation spanning the union, with
// the text re-sliced from the original document. This keeps compound
// surnames and multi-part addresses as one annotation.
func (r *Resolver) fuseAdjacent(text string, anns []annotation.Annotation) []annotation.Annotation {
	if len(anns) < 2 {
		return anns
	}
	out := make([]annotation.Annotation, 0, len(anns))
	cur := anns[0]
	for _, next := range anns[1:] {
		if next.Tag == cur.Tag && annotation.AdjacentOver(cur.Span, next.Span, text, r.Connectors) {
			cur.End = next.End
			cur.Text = text[cur.Start:cur.End]
			if next.Priority < cur.Priority {
				cur.Priority = next.Priority
			}
			continue
		}
		out = append(out, cur)
		cur = next
	}
	return append(out, cur)
}
