// Package gamesim resolves single games from two adjusted rosters.
package gamesim

import "math"

// Elo transform constants.
const (
	defaultHomeFieldAdvantage = 55.0
	eloDivisor                = 400.0
	defaultKFactor            = 32.0
)

// WinProb converts a rating differential into the home side's win
// probability via the logistic Elo transform.
func WinProb(homeRating, awayRating, homeFieldAdvantage float64) float64 {
	exp := (awayRating - (homeRating + homeFieldAdvantage)) / eloDivisor
	return 1.0 / (1.0 + math.Pow(10, exp))
}

// ApplyResult moves a rating toward the observed outcome. Score is 1 for a
// win, 0.5 for a tie, 0 for a loss; expected is the pre-game win
// probability.
func ApplyResult(rating, expected, score, k float64) float64 {
	if k <= 0 {
		k = defaultKFactor
	}
	return rating + k*(score-expected)
}
