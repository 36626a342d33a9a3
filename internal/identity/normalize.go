package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics removes combining marks from s, so "Súdwest-Fryslân"
// folds to "Sudwest-Fryslan". On a transform failure the input is returned
// unchanged.
func FoldDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Normalizer reduces an annotation's surface text to its identity key. Two
// annotations whose keys are equal denote the same real-world entity.
type Normalizer func(string) string

// DefaultNormalizer folds case and diacritics, collapses whitespace runs and
// trims surrounding punctuation and quotes, so "Rijn apotheek" and
// "'Rijn apotheek'" cluster to the same identity.
func DefaultNormalizer(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
	})
	s = strings.ToLower(FoldDiacritics(s))
	return strings.Join(strings.Fields(s), " ")
}
