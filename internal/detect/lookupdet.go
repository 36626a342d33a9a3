package detect

import (
	"context"
	"regexp"

	"veil/internal/annotation"
	"veil/internal/lookup"
)

// lookupDetector matches dictionary terms case-insensitively with
// diacritics folded. At every token position the longest known term wins.
type lookupDetector struct {
	name     string
	priority int
	index    *lookup.Index
}

func newLookupDetector(name string, index *lookup.Index, priority int) Detector {
	return &lookupDetector{name: name, priority: priority, index: index}
}

func (d *lookupDetector) Name() string { return d.name }

func (d *lookupDetector) Detect(ctx context.Context, doc Document) ([]annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.scan(doc.Text), nil
}

func (d *lookupDetector) scan(text string) []annotation.Annotation {
	tokens := tokenize(text)
	var out []annotation.Annotation
	for i := 0; i < len(tokens); {
		matched := 0
		max := d.index.MaxWords()
		if rest := len(tokens) - i; max > rest {
			max = rest
		}
		for n := max; n >= 1; n-- {
			words := make([]string, n)
			for k := 0; k < n; k++ {
				words[k] = tokens[i+k].text
			}
			if d.index.Has(words) {
				matched = n
				break
			}
		}
		if matched == 0 {
			i++
			continue
		}
		start, end := tokens[i].start, tokens[i+matched-1].end
		out = append(out, annotation.Annotation{
			Span:     annotation.Span{Start: start, End: end, Text: text[start:end]},
			Tag:      d.name,
			Detector: d.name,
			Priority: d.priority,
		})
		i += matched
	}
	return out
}

var (
	straatRe   = regexp.MustCompile(`(?i)\b[a-z0-9éëïöü]*(?:straat|laan|weg|plein|gracht|dijk|kade|singel|markt|hof|pad)\s+\d+[a-z]?\b`)
	postcodeRe = regexp.MustCompile(`\b\d{4}\s?[A-Z]{2}\b`)
)

// locatieDetector combines the place-name lookup with street-plus-number
// and postcode patterns.
type locatieDetector struct {
	lookup *lookupDetector
	regex  *regexDetector
}

func newLocatieDetector(store *lookup.Store, priority int) Detector {
	return &locatieDetector{
		lookup: &lookupDetector{name: TagLocatie, priority: priority, index: store.Places},
		regex: &regexDetector{
			name:     TagLocatie,
			priority: priority,
			specs:    []regexSpec{{straatRe, 0}, {postcodeRe, 0}},
		},
	}
}

func (d *locatieDetector) Name() string { return TagLocatie }

func (d *locatieDetector) Detect(ctx context.Context, doc Document) ([]annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := d.lookup.scan(doc.Text)
	more, err := d.regex.Detect(ctx, doc)
	if err != nil {
		return nil, err
	}
	return append(out, more...), nil
}
