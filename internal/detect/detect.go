// Package detect provides the candidate annotation detectors and their
// registry. Each detector independently proposes possibly-overlapping
// candidate annotations for one entity type; the resolver downstream is
// responsible for combining them.
package detect

import (
	"context"

	"veil/internal/annotation"
)

// Patient is the optional patient metadata supplied with a document. It is
// consumed only by the patient-identity detector.
type Patient struct {
	FirstNames []string
	Initials   string
	Surname    string
}

// Document is the per-request input a detector may use. The text is
// immutable; detectors never mutate shared state.
type Document struct {
	Text    string
	Patient *Patient
}

// Detector proposes candidate annotations for one entity group.
type Detector interface {
	Name() string
	Detect(ctx context.Context, doc Document) ([]annotation.Annotation, error)
}

// token is a word occurrence in the document text.
type token struct {
	start int
	end   int
	text  string
}

// tokenize splits text into word tokens. A word is a run of letters and
// digits; hyphens and apostrophes are kept when they join two word runes,
// so "Heide-Jagers" and "'t" stay single tokens.
func tokenize(text string) []token {
	var tokens []token
	runes := []rune(text)
	byteAt := make([]int, len(runes)+1)
	b := 0
	for i, r := range runes {
		byteAt[i] = b
		b += len(string(r))
	}
	byteAt[len(runes)] = b

	isWord := func(r rune) bool {
		return r == '_' || r == '\'' ||
			('0' <= r && r <= '9') ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') ||
			r > 127 && isLetter(r)
	}

	i := 0
	for i < len(runes) {
		if !isWord(runes[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) {
			if isWord(runes[j]) {
				j++
				continue
			}
			// Internal hyphen joining two word runes stays in the token.
			if runes[j] == '-' && j+1 < len(runes) && isWord(runes[j+1]) {
				j += 2
				continue
			}
			break
		}
		tokens = append(tokens, token{
			start: byteAt[i],
			end:   byteAt[j],
			text:  text[byteAt[i]:byteAt[j]],
		})
		i = j
	}
	return tokens
}

func isLetter(r rune) bool {
	// Cheap letter test for the Latin ranges clinical notes use.
	return (r >= 0x00C0 && r <= 0x024F) || (r >= 0x1E00 && r <= 0x1EFF)
}

func isCapitalized(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z' || r >= 0x00C0 && r <= 0x00DE
}
