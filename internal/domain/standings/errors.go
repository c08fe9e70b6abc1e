package standings

import "errors"

// Sentinel kinds for standings errors.
var (
	// ErrUnknownTeam marks a result referencing a team the table does not
	// track. The mutation is rejected whole.
	ErrUnknownTeam = errors.New("unknown team")

	// ErrDuplicateResult marks a game result that was already folded in.
	ErrDuplicateResult = errors.New("game result already applied")

	// ErrTieBreakExhausted should be unreachable: the id step always
	// resolves. Reaching it indicates a data-integrity bug.
	ErrTieBreakExhausted = errors.New("tie-break cascade exhausted")
)
