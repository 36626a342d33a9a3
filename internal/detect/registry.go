package detect

import (
	"fmt"
	"strings"

	"veil/internal/lookup"
)

// Canonical entity type names. These double as detector names: one detector
// per tag, disabled by name per request.
const (
	TagPatient        = "patient"
	TagPersoon        = "persoon"
	TagLocatie        = "locatie"
	TagZiekenhuis     = "ziekenhuis"
	TagZorginstelling = "zorginstelling"
	TagDatum          = "datum"
	TagLeeftijd       = "leeftijd"
	TagBSN            = "bsn"
	TagID             = "id"
	TagTelefoonnummer = "telefoonnummer"
	TagEmailadres     = "emailadres"
	TagURL            = "url"
)

// UnknownDetectorError reports a detector name that does not exist in the
// registry, e.g. in a request's disabled list.
type UnknownDetectorError struct {
	Name string
}

func (e *UnknownDetectorError) Error() string {
	return fmt.Sprintf("unknown detector %q", e.Name)
}

// Registry holds the configured detectors in fixed group order. The group
// index is the detector's priority: earlier groups take precedence during
// conflict resolution, which is how a patient annotation outranks a persoon
// annotation on the same span.
type Registry struct {
	detectors []Detector
	byName    map[string]Detector
	tags      map[string]bool
}

// NewRegistry builds the default detector set against the given lookup
// store. The store must be fully loaded before this call and is treated as
// read-only afterwards.
func NewRegistry(store *lookup.Store) *Registry {
	r := &Registry{
		byName: make(map[string]Detector),
		tags:   make(map[string]bool),
	}
	for _, d := range []Detector{
		newPatientDetector(0),
		newPersoonDetector(store, 1),
		newLocatieDetector(store, 2),
		newLookupDetector(TagZiekenhuis, store.Hospitals, 3),
		newLookupDetector(TagZorginstelling, store.CareInstitutes, 4),
		newDatumDetector(5),
		newLeeftijdDetector(6),
		newBSNDetector(7),
		newIDDetector(8),
		newTelefoonnummerDetector(9),
		newEmailadresDetector(10),
		newURLDetector(11),
	} {
		r.detectors = append(r.detectors, d)
		r.byName[d.Name()] = d
		r.tags[d.Name()] = true
	}
	return r
}

// KnownTag reports whether tag is a registered entity type.
func (r *Registry) KnownTag(tag string) bool { return r.tags[tag] }

// Names returns the detector names in group order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.detectors))
	for i, d := range r.detectors {
		out[i] = d.Name()
	}
	return out
}

// Validate checks that every name in disabled exists in the registry.
// Unknown names are a configuration error rather than a silent no-op.
func (r *Registry) Validate(disabled []string) error {
	for _, name := range disabled {
		if _, ok := r.byName[normalizeName(name)]; !ok {
			return &UnknownDetectorError{Name: name}
		}
	}
	return nil
}

// Enabled returns the detectors in group order, skipping the disabled ones.
// Validate must have been called on the same list first.
func (r *Registry) Enabled(disabled []string) []Detector {
	if len(disabled) == 0 {
		return r.detectors
	}
	off := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		off[normalizeName(name)] = true
	}
	out := make([]Detector, 0, len(r.detectors))
	for _, d := range r.detectors {
		if !off[d.Name()] {
			out = append(out, d)
		}
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
