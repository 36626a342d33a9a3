package annotation

import "sort"

type setKey struct {
	start, end int
	text, tag  string
}

// Set is an unordered annotation collection with value-set semantics: two
// annotations with identical (Start, End, Text, Tag) are one element, so
// exact duplicates from independent detectors collapse.
type Set struct {
	members map[setKey]Annotation
}

// NewSet builds a Set from the given annotations.
func NewSet(anns ...Annotation) *Set {
	s := &Set{members: make(map[setKey]Annotation, len(anns))}
	for _, a := range anns {
		s.Add(a)
	}
	return s
}

// Add inserts a into the set. When a duplicate key is already present the
// annotation with the lower priority number is kept.
func (s *Set) Add(a Annotation) {
	k := setKey{a.Start, a.End, a.Text, a.Tag}
	if prev, ok := s.members[k]; ok && prev.Priority <= a.Priority {
		return
	}
	s.members[k] = a
}

// Len returns the number of distinct annotations.
func (s *Set) Len() int { return len(s.members) }

// Sorted returns the members in the deterministic order
// (Start, End, Tag): the only externally observable ordering.
func (s *Set) Sorted() []Annotation {
	out := make([]Annotation, 0, len(s.members))
	for _, a := range s.members {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].End != out[j].End {
			return out[i].End < out[j].End
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}
