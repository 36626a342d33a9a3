// Package identity clusters resolved annotations that denote the same
// real-world entity and assigns each cluster a stable display placeholder.
//
// Counters are per tag and per document: a fresh Assigner is created for
// every document, numbers start at 1 in order of first appearance and are
// never reused.
package identity

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"veil/internal/annotation"
)

// TagPatient is the one tag whose annotations always collapse to a single
// identity without a numeric suffix.
const TagPatient = "patient"

// UnknownTagError reports an annotation carrying a tag that is not in the
// configured type registry. Such annotations are rejected rather than
// silently dropped, since a silent drop would leak identifying text.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("annotation tag %q is not registered", e.Tag)
}

// TagSet answers whether a tag is a registered entity type.
type TagSet interface {
	KnownTag(tag string) bool
}

// Assigner maps resolved annotations to display placeholders.
type Assigner struct {
	tags        TagSet
	normalizers map[string]Normalizer
	fallback    Normalizer
}

// NewAssigner creates an Assigner validating against the given tag set,
// using DefaultNormalizer for every tag.
func NewAssigner(tags TagSet) *Assigner {
	return &Assigner{tags: tags, fallback: DefaultNormalizer}
}

// SetNormalizer overrides the equivalence function for one tag, so stricter
// clustering can be substituted per entity type.
func (as *Assigner) SetNormalizer(tag string, n Normalizer) {
	if as.normalizers == nil {
		as.normalizers = make(map[string]Normalizer)
	}
	as.normalizers[tag] = n
}

func (as *Assigner) normalize(tag, text string) string {
	if n, ok := as.normalizers[tag]; ok {
		return n(text)
	}
	return as.fallback(text)
}

// Assign computes the display tag for every resolved annotation. Identity
// equivalence is normalized-text equality within a tag; the patient tag
// collapses to the literal PATIENT placeholder.
func (as *Assigner) Assign(resolved []annotation.Annotation) ([]annotation.Tagged, error) {
	anns := make([]annotation.Annotation, len(resolved))
	copy(anns, resolved)
	sort.Slice(anns, func(i, j int) bool {
		if anns[i].Start != anns[j].Start {
			return anns[i].Start < anns[j].Start
		}
		return anns[i].End < anns[j].End
	})

	counters := make(map[string]int)
	numbers := make(map[string]int) // tag + "\x00" + identity key

	out := make([]annotation.Tagged, 0, len(anns))
	for _, a := range anns {
		if !as.tags.KnownTag(a.Tag) {
			return nil, &UnknownTagError{Tag: a.Tag}
		}
		if a.Tag == TagPatient {
			out = append(out, annotation.Tagged{Annotation: a, DisplayTag: strings.ToUpper(TagPatient)})
			continue
		}
		key := a.Tag + "\x00" + as.normalize(a.Tag, a.Text)
		n, ok := numbers[key]
		if !ok {
			counters[a.Tag]++
			n = counters[a.Tag]
			numbers[key] = n
		}
		out = append(out, annotation.Tagged{
			Annotation: a,
			DisplayTag: strings.ToUpper(FoldDiacritics(a.Tag)) + "-" + strconv.Itoa(n),
		})
	}
	return out, nil
}
