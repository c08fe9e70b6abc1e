package narrative

import "errors"

// Sentinel kinds for narrative validation errors.
var (
	// ErrNarrativeGrounding marks a recap contradicting the computed facts.
	// The payload is rejected, never silently corrected; callers fall back
	// to the template recap or request regeneration.
	ErrNarrativeGrounding = errors.New("narrative contradicts game facts")
)
