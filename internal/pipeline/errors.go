package pipeline

import "fmt"

// ConfigError reports an invalid configuration for a document: an unknown
// detector name in the disabled list, or an annotation carrying an
// unregistered tag. It is fatal for that document only.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// DetectorError wraps an unexpected failure raised by a detector while
// processing a single document. It is caught at the per-document boundary
// and is retryable by resubmission; sibling documents in a batch are not
// affected.
type DetectorError struct {
	Detector string
	Err      error
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %s: %v", e.Detector, e.Err)
}
func (e *DetectorError) Unwrap() error { return e.Err }

// InvariantError reports an internal invariant violation, such as
// overlapping spans reaching the renderer. It indicates a resolution bug
// that could leak identifying text, so processing of the document is
// aborted and the error is never swallowed.
type InvariantError struct {
	Err error
}

func (e *InvariantError) Error() string { return "invariant violation: " + e.Err.Error() }
func (e *InvariantError) Unwrap() error { return e.Err }
