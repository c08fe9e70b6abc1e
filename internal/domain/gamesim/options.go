// Package gamesim resolves single games from two adjusted rosters.
package gamesim

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithHomeFieldAdvantage sets the rating bonus applied to the home side.
func WithHomeFieldAdvantage(hfa float64) Option {
	return func(s *Simulator) {
		if hfa >= 0 {
			s.homeFieldAdvantage = hfa
		}
	}
}

// WithDriveBudget sets the fixed number of regulation drives per game.
func WithDriveBudget(budget int) Option {
	return func(s *Simulator) {
		if budget > 0 {
			s.driveBudget = budget
		}
	}
}

// WithOvertime enables sudden-score continuation drives on a regulation tie.
// Required for postseason play, where a tie is not a valid terminal state.
func WithOvertime(enabled bool) Option {
	return func(s *Simulator) {
		s.overtime = enabled
	}
}
