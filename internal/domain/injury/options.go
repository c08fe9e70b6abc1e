// Package injury models probabilistic injuries and fatigue accumulation.
package injury

import "github.com/okian/gridiron/internal/domain/model"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithPositionRates overrides the per-snap injury incidence per position.
func WithPositionRates(rates map[model.Position]float64) Option {
	return func(e *Engine) {
		if len(rates) == 0 {
			return
		}
		merged := make(map[model.Position]float64, len(defaultPositionRates))
		for pos, rate := range defaultPositionRates {
			merged[pos] = rate
		}
		for pos, rate := range rates {
			if rate > 0 {
				merged[pos] = rate
			}
		}
		e.positionRates = merged
	}
}

// WithFatiguePerSnap sets the fatigue accrued per active snap.
func WithFatiguePerSnap(perSnap float64) Option {
	return func(e *Engine) {
		if perSnap > 0 {
			e.fatiguePerSnap = perSnap
		}
	}
}

// WithFatigueRecovery sets the fatigue shed during a rest week.
func WithFatigueRecovery(recovery float64) Option {
	return func(e *Engine) {
		if recovery > 0 {
			e.fatigueRecovery = recovery
		}
	}
}

// WithRatingFloor sets the minimum effective-rating share a fatigued player
// degrades to.
func WithRatingFloor(floor float64) Option {
	return func(e *Engine) {
		if floor > 0 && floor <= 1 {
			e.ratingFloor = floor
		}
	}
}
