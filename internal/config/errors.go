package config

import (
	"errors"
)

// Sentinel errors surfaced by the loader so callers can branch on the
// failure kind with errors.Is.
var (
	// ErrInvalidConfig marks a loaded configuration that fails validation,
	// such as a non-positive week count or queue size.
	ErrInvalidConfig = errors.New("invalid season config")

	// ErrLoadConfig marks a failure reading or merging a config source.
	ErrLoadConfig = errors.New("season config load failed")
)
