// Package pipeline wires the per-document de-identification flow:
// detection, conflict resolution, identity assignment and rendering.
//
// A Deidentifier is safe for concurrent use: every Deidentify call works on
// document-scoped state only. The lookup structures behind the detector
// registry are loaded once at startup and never mutated.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"veil/internal/annotation"
	"veil/internal/detect"
	"veil/internal/identity"
	"veil/internal/redact"
	"veil/internal/resolve"
)

// Options are the per-request knobs.
type Options struct {
	// Disabled lists detector names to skip for this document. Names are
	// validated against the registry before anything runs.
	Disabled []string
}

// Deidentifier runs the full annotation pipeline for single documents.
type Deidentifier struct {
	registry *detect.Registry
	resolver *resolve.Resolver
}

// New creates a Deidentifier over the given registry and resolver.
func New(registry *detect.Registry, resolver *resolve.Resolver) *Deidentifier {
	return &Deidentifier{registry: registry, resolver: resolver}
}

// Registry exposes the detector registry, e.g. for name validation at the
// request layer.
func (d *Deidentifier) Registry() *detect.Registry { return d.registry }

// Deidentify processes one document and returns the rendered views.
// Error taxonomy: *ConfigError for bad detector names or unknown tags,
// *DetectorError for collaborator failures, *InvariantError for internal
// resolution bugs.
func (d *Deidentifier) Deidentify(ctx context.Context, doc detect.Document, opts Options) (redact.Result, error) {
	if err := d.registry.Validate(opts.Disabled); err != nil {
		return redact.Result{}, &ConfigError{Err: err}
	}

	candidates := annotation.NewSet()
	for _, det := range d.registry.Enabled(opts.Disabled) {
		anns, err := det.Detect(ctx, doc)
		if err != nil {
			return redact.Result{}, &DetectorError{Detector: det.Name(), Err: err}
		}
		for _, a := range anns {
			if err := annotation.CheckSpan(doc.Text, a.Span); err != nil {
				return redact.Result{}, &DetectorError{
					Detector: det.Name(),
					Err:      fmt.Errorf("invalid candidate: %w", err),
				}
			}
			candidates.Add(a)
		}
	}

	resolved := d.resolver.Resolve(doc.Text, candidates)

	assigner := identity.NewAssigner(d.registry)
	tagged, err := assigner.Assign(resolved)
	if err != nil {
		var unknown *identity.UnknownTagError
		if errors.As(err, &unknown) {
			return redact.Result{}, &ConfigError{Err: err}
		}
		return redact.Result{}, err
	}

	result, err := redact.Render(doc.Text, tagged)
	if err != nil {
		return redact.Result{}, &InvariantError{Err: err}
	}
	return result, nil
}
