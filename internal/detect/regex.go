package detect

import (
	"context"
	"regexp"

	"veil/internal/annotation"
)

// regexSpec pairs a compiled pattern with the submatch group to annotate.
// Group 0 annotates the whole match; RE2 has no lookarounds, so context
// tokens (e.g. the "bsn" keyword, the "jaar" suffix) are matched in the
// pattern and the identifying part is isolated via a capture group.
type regexSpec struct {
	re    *regexp.Regexp
	group int
}

type regexDetector struct {
	name     string
	priority int
	specs    []regexSpec
	// filter, when set, rejects matched values (e.g. elfproef for bsn).
	filter func(string) bool
}

func (d *regexDetector) Name() string { return d.name }

func (d *regexDetector) Detect(ctx context.Context, doc Document) ([]annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []annotation.Annotation
	for _, sp := range d.specs {
		for _, m := range sp.re.FindAllStringSubmatchIndex(doc.Text, -1) {
			start, end := m[2*sp.group], m[2*sp.group+1]
			if start < 0 || start >= end {
				continue
			}
			value := doc.Text[start:end]
			if d.filter != nil && !d.filter(value) {
				continue
			}
			out = append(out, annotation.Annotation{
				Span:     annotation.Span{Start: start, End: end, Text: value},
				Tag:      d.name,
				Detector: d.name,
				Priority: d.priority,
			})
		}
	}
	return out, nil
}

var (
	datumMaandRe  = regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december)(?:\s+\d{4})?\b`)
	datumCijferRe = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)

	leeftijdRe = regexp.MustCompile(`\b(\d{1,3})\s+jaar\b`)

	bsnRe = regexp.MustCompile(`(?i)\bbsn\s*[:.]?\s*(\d{9})\b`)

	idRe = regexp.MustCompile(`\b\d{7,}\b`)

	telefoonHaakjesRe = regexp.MustCompile(`\(0\d{1,3}\)\s?\d{6,8}\b`)
	telefoonLandRe    = regexp.MustCompile(`\+31[-\s]?(?:\(0\))?\d{1,3}[-\s]?\d{6,8}\b`)
	telefoonNulRe     = regexp.MustCompile(`\b0\d{1,3}[-\s]?\d{6,8}\b`)

	emailadresRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	urlSchemeRe = regexp.MustCompile(`\bhttps?://[^\s<>"')\]]+`)
	urlWWWRe    = regexp.MustCompile(`\bwww\.[^\s<>"')\]]+`)
)

func newDatumDetector(priority int) Detector {
	return &regexDetector{
		name:     TagDatum,
		priority: priority,
		specs:    []regexSpec{{datumMaandRe, 0}, {datumCijferRe, 0}},
	}
}

func newLeeftijdDetector(priority int) Detector {
	return &regexDetector{
		name:     TagLeeftijd,
		priority: priority,
		specs:    []regexSpec{{leeftijdRe, 1}},
	}
}

func newBSNDetector(priority int) Detector {
	return &regexDetector{
		name:     TagBSN,
		priority: priority,
		specs:    []regexSpec{{bsnRe, 1}},
		filter:   elfproef,
	}
}

func newIDDetector(priority int) Detector {
	return &regexDetector{
		name:     TagID,
		priority: priority,
		specs:    []regexSpec{{idRe, 0}},
	}
}

func newTelefoonnummerDetector(priority int) Detector {
	return &regexDetector{
		name:     TagTelefoonnummer,
		priority: priority,
		specs:    []regexSpec{{telefoonHaakjesRe, 0}, {telefoonLandRe, 0}, {telefoonNulRe, 0}},
	}
}

func newEmailadresDetector(priority int) Detector {
	return &regexDetector{
		name:     TagEmailadres,
		priority: priority,
		specs:    []regexSpec{{emailadresRe, 0}},
	}
}

func newURLDetector(priority int) Detector {
	return &regexDetector{
		name:     TagURL,
		priority: priority,
		specs:    []regexSpec{{urlSchemeRe, 0}, {urlWWWRe, 0}},
	}
}

// elfproef is the Dutch 11-check for burgerservicenummers: digits weighted
// 9..2 with the last digit weighted -1 must sum to a multiple of 11.
func elfproef(s string) bool {
	if len(s) != 9 {
		return false
	}
	sum := 0
	for i, r := range s {
		d := int(r - '0')
		w := 9 - i
		if w == 1 {
			w = -1
		}
		sum += d * w
	}
	return sum%11 == 0
}
