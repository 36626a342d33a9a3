package detect

import (
	"context"
	"strings"

	"veil/internal/annotation"
	"veil/internal/lookup"
)

// titles trigger a name match without being part of it, so "arts Peter de
// Visser" and "Mevrouw van der Heide-Jagers Op Akkerhuis" both yield a
// persoon annotation for the name only.
var titles = map[string]bool{
	"dhr": true, "mevrouw": true, "meneer": true, "mevr": true, "mw": true,
	"dr": true, "drs": true, "arts": true, "prof": true, "ir": true,
}

// persoonDetector finds third-party person names by first-name and surname
// lookup, extending across interfixes ("van", "de", "der") and hyphenated
// compounds.
type persoonDetector struct {
	priority   int
	firstNames *lookup.Set
	surnames   *lookup.Set
	interfixes *lookup.Set
}

func newPersoonDetector(store *lookup.Store, priority int) Detector {
	return &persoonDetector{
		priority:   priority,
		firstNames: store.FirstNames,
		surnames:   store.Surnames,
		interfixes: store.Interfixes,
	}
}

func (d *persoonDetector) Name() string { return TagPersoon }

func (d *persoonDetector) Detect(ctx context.Context, doc Document) ([]annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := tokenize(doc.Text)
	var out []annotation.Annotation
	for i := 0; i < len(tokens); {
		t := tokens[i]
		switch {
		case isCapitalized(t.text) && d.firstNames.Has(t.text):
			last := d.extend(tokens, i)
			out = append(out, d.annotation(doc.Text, tokens[i], tokens[last]))
			i = last + 1
		case titles[strings.ToLower(strings.TrimSuffix(t.text, "."))]:
			last := d.extend(tokens, i)
			if last > i {
				out = append(out, d.annotation(doc.Text, tokens[i+1], tokens[last]))
			}
			i = last + 1
		default:
			i++
		}
	}
	return out, nil
}

// extend walks forward from the trigger token at index i, consuming
// interfixes and acceptable name tokens. It returns the index of the last
// token belonging to the name; trailing interfixes are not included.
func (d *persoonDetector) extend(tokens []token, i int) int {
	last := i
	prevInterfix := false
	for j := i + 1; j < len(tokens); j++ {
		w := tokens[j].text
		if d.interfixes.Has(w) {
			prevInterfix = true
			continue
		}
		if !isCapitalized(w) {
			break
		}
		if prevInterfix || d.surnames.Has(w) || strings.Contains(w, "-") {
			last = j
			prevInterfix = false
			continue
		}
		break
	}
	return last
}

func (d *persoonDetector) annotation(text string, first, last token) annotation.Annotation {
	return annotation.Annotation{
		Span:     annotation.Span{Start: first.start, End: last.end, Text: text[first.start:last.end]},
		Tag:      TagPersoon,
		Detector: TagPersoon,
		Priority: d.priority,
	}
}
