package service

import "errors"

// Sentinel kinds for orchestrator errors.
var (
	ErrSimulationState = errors.New("operation invalid in current season state")
	ErrWeekIncomplete  = errors.New("week resolution incomplete")
)
