package bracket

import "errors"

// Sentinel kinds for bracket errors.
var (
	// ErrInsufficientTeams marks a standings set too small to seed.
	ErrInsufficientTeams = errors.New("not enough teams to seed a bracket")

	// ErrUnresolvedGame marks a postseason result that ended tied, which is
	// not a valid terminal state.
	ErrUnresolvedGame = errors.New("postseason game ended without a winner")
)
