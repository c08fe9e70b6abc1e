package schedule

import "errors"

// Sentinel kinds for schedule generation errors.
var (
	// ErrScheduleConstraint marks unsatisfiable scheduling input. It is
	// surfaced to the caller and never retried.
	ErrScheduleConstraint = errors.New("schedule constraint violated")
)
