package model

// Severity is an injury severity tier.
type Severity string

// Severity tiers, mildest first.
const (
	SeverityMinor        Severity = "minor"
	SeverityModerate     Severity = "moderate"
	SeveritySevere       Severity = "severe"
	SeveritySeasonEnding Severity = "season-ending"
)

// InjuryRecord is one injury produced by the injury engine. Consulted by
// availability checks until the recovery week passes, then kept for history.
type InjuryRecord struct {
	PlayerID     int
	TeamID       int
	GameID       string
	Severity     Severity
	Description  string
	WeeksOut     int
	OccurredWeek int
	RecoveryWeek int // first week the player is available again
}

// Resolved reports whether the injury no longer blocks participation as of
// the given week.
func (r InjuryRecord) Resolved(week int) bool {
	return week >= r.RecoveryWeek
}
