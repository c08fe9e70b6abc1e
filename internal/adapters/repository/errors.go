package repository

import "errors"

// Sentinel kinds for franchise state store errors.
var (
	ErrSnapshotNotFound = errors.New("roster snapshot not found")
	ErrDuplicateResult  = errors.New("game result already saved")
)
