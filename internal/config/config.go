// Package config defines engine configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Season is the season year being simulated.
	Season int `koanf:"season"`

	// Weeks is the regular-season length in weeks.
	Weeks int `koanf:"weeks"`

	// RNGSeed is the master seed; per-game streams derive from it.
	RNGSeed int64 `koanf:"rng_seed"`

	// WorkerCount sets the number of game simulation workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory game job queue.
	QueueSize int `koanf:"queue_size"`

	// HomeFieldAdvantage is the rating bonus applied to the home side.
	HomeFieldAdvantage float64 `koanf:"home_field_advantage"`

	// DriveBudget is the regulation drive count per game.
	DriveBudget int `koanf:"drive_budget"`

	// PlayoffSeeds is the number of postseason seeds per conference.
	PlayoffSeeds int `koanf:"playoff_seeds"`

	// FatiguePerSnap and FatigueRecovery tune the fatigue model.
	FatiguePerSnap  float64 `koanf:"fatigue_per_snap"`
	FatigueRecovery float64 `koanf:"fatigue_recovery"`

	// YardsTolerance is the recap validation band for asserted yardage.
	YardsTolerance int `koanf:"yards_tolerance"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:           "info",
		Season:             2026,
		Weeks:              18,
		RNGSeed:            1,
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          512,
		HomeFieldAdvantage: 55.0,
		DriveBudget:        24,
		PlayoffSeeds:       7,
		FatiguePerSnap:     0.32,
		FatigueRecovery:    18.0,
		YardsTolerance:     15,
	}
	return c
}
