package detect

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"veil/internal/annotation"
)

// patientDetector matches the surface forms of the patient named in the
// document metadata: first names, initials, surname and their combinations.
// Every match is tagged patient; the identity assigner collapses them all
// to the single PATIENT placeholder.
type patientDetector struct {
	priority int
}

func newPatientDetector(priority int) Detector {
	return &patientDetector{priority: priority}
}

func (d *patientDetector) Name() string { return TagPatient }

func (d *patientDetector) Detect(ctx context.Context, doc Document) ([]annotation.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc.Patient == nil {
		return nil, nil
	}
	var out []annotation.Annotation
	for _, re := range patientPatterns(doc.Patient) {
		for _, m := range re.FindAllStringIndex(doc.Text, -1) {
			out = append(out, annotation.Annotation{
				Span:     annotation.Span{Start: m[0], End: m[1], Text: doc.Text[m[0]:m[1]]},
				Tag:      TagPatient,
				Detector: TagPatient,
				Priority: d.priority,
			})
		}
	}
	return out, nil
}

// patientPatterns expands the metadata into the literal surface forms to
// search for. Longer variants are generated alongside the short ones; the
// resolver keeps the longest match when they nest.
func patientPatterns(p *Patient) []*regexp.Regexp {
	variants := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" {
			variants[v] = true
		}
	}

	surname := strings.TrimSpace(p.Surname)
	add(surname)

	for _, fn := range p.FirstNames {
		fn = strings.TrimSpace(fn)
		if fn == "" {
			continue
		}
		add(fn)
		ini := string([]rune(fn)[0]) + "."
		add(ini)
		if surname != "" {
			add(fn + " " + surname)
			add(ini + " " + surname)
			add(ini + surname)
		}
	}
	if ini := dottedInitials(p.Initials); ini != "" {
		add(ini)
		if surname != "" {
			add(ini + " " + surname)
		}
	}

	sorted := make([]string, 0, len(variants))
	for v := range variants {
		sorted = append(sorted, v)
	}
	// Longest first so nested variants resolve deterministically.
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	res := make([]*regexp.Regexp, 0, len(sorted))
	for _, v := range sorted {
		res = append(res, variantPattern(v))
	}
	return res
}

// dottedInitials turns "JJ" or "J.J." into "J.J." form.
func dottedInitials(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
			b.WriteByte('.')
		}
	}
	return b.String()
}

// variantPattern compiles a case-insensitive word-bounded pattern for one
// literal variant. The trailing boundary is dropped when the variant ends
// in punctuation, where \b would never match.
func variantPattern(v string) *regexp.Regexp {
	expr := `(?i)\b` + regexp.QuoteMeta(v)
	last, _ := lastRune(v)
	if unicode.IsLetter(last) || unicode.IsDigit(last) {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

func lastRune(s string) (rune, bool) {
	var r rune
	ok := false
	for _, c := range s {
		r = c
		ok = true
	}
	return r, ok
}
