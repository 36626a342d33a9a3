// Package lookup holds the dictionary structures the lookup detectors match
// against: place names, institutions, first names and surnames.
//
// A Store is built once at startup, before any worker fan-out, and is never
// mutated afterwards; it is safe to share across all workers without
// locking.
package lookup

import (
	"strings"

	"veil/internal/identity"
)

// Set is an immutable membership set of single terms, matched
// case-insensitively with diacritics folded.
type Set struct {
	members map[string]struct{}
}

// NewSet builds a Set from raw terms.
func NewSet(terms []string) *Set {
	s := &Set{members: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		t = normalizeTerm(t)
		if t != "" {
			s.members[t] = struct{}{}
		}
	}
	return s
}

// Has reports whether term is in the set.
func (s *Set) Has(term string) bool {
	_, ok := s.members[normalizeTerm(term)]
	return ok
}

// Len returns the number of distinct terms.
func (s *Set) Len() int { return len(s.members) }

// Index is an immutable set of possibly multi-word terms supporting
// longest-match scanning by the lookup detectors.
type Index struct {
	maxWords int
	terms    map[string]struct{}
}

// NewIndex builds an Index from raw terms. Multi-word terms are normalized
// to single-space separated form.
func NewIndex(terms []string) *Index {
	ix := &Index{terms: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		words := strings.Fields(t)
		if len(words) == 0 {
			continue
		}
		if len(words) > ix.maxWords {
			ix.maxWords = len(words)
		}
		for i, w := range words {
			words[i] = normalizeTerm(w)
		}
		ix.terms[strings.Join(words, " ")] = struct{}{}
	}
	return ix
}

// MaxWords returns the word count of the longest term.
func (ix *Index) MaxWords() int { return ix.maxWords }

// Has reports whether the normalized word sequence is a known term.
func (ix *Index) Has(words []string) bool {
	norm := make([]string, len(words))
	for i, w := range words {
		norm[i] = normalizeTerm(w)
	}
	_, ok := ix.terms[strings.Join(norm, " ")]
	return ok
}

// Len returns the number of distinct terms.
func (ix *Index) Len() int { return len(ix.terms) }

func normalizeTerm(t string) string {
	return strings.ToLower(identity.FoldDiacritics(strings.TrimSpace(t)))
}

// Store bundles the lookup structures for all lookup-driven detectors.
type Store struct {
	Places         *Index
	Hospitals      *Index
	CareInstitutes *Index
	FirstNames     *Set
	Surnames       *Set
	Interfixes     *Set
}

// lists is the serializable raw form of a Store, used by the directory
// loader and the compiled cache.
type lists struct {
	Places         []string `msgpack:"places"`
	Hospitals      []string `msgpack:"hospitals"`
	CareInstitutes []string `msgpack:"care_institutes"`
	FirstNames     []string `msgpack:"first_names"`
	Surnames       []string `msgpack:"surnames"`
	Interfixes     []string `msgpack:"interfixes"`
}

func (l lists) build() *Store {
	return &Store{
		Places:         NewIndex(l.Places),
		Hospitals:      NewIndex(l.Hospitals),
		CareInstitutes: NewIndex(l.CareInstitutes),
		FirstNames:     NewSet(l.FirstNames),
		Surnames:       NewSet(l.Surnames),
		Interfixes:     NewSet(l.Interfixes),
	}
}
