// Package model contains domain models passed between layers.
package model

// Conference identifies one of the two league conferences.
type Conference string

// League conferences.
const (
	ConferenceAFC Conference = "AFC"
	ConferenceNFC Conference = "NFC"
)

// Division identifies a geographic division inside a conference.
type Division string

// Divisions, in canonical order.
const (
	DivisionEast  Division = "East"
	DivisionNorth Division = "North"
	DivisionSouth Division = "South"
	DivisionWest  Division = "West"
)

// DivisionOrder is the canonical iteration order for divisions.
var DivisionOrder = []Division{DivisionEast, DivisionNorth, DivisionSouth, DivisionWest}

// Team carries the immutable identity and current strength of a franchise.
// Conference and Division may be empty, in which case the schedule generator
// falls back to a pure round-robin.
type Team struct {
	ID         int
	Name       string
	Abbr       string
	Rating     float64 // Elo-like strength rating
	Conference Conference
	Division   Division
}

// Structured reports whether the team carries full conference/division metadata.
func (t Team) Structured() bool {
	return t.Conference != "" && t.Division != ""
}

// Position is a player's positional group.
type Position string

// Positional groups used by the injury and stat models.
const (
	PositionQB   Position = "QB"
	PositionRB   Position = "RB"
	PositionWR   Position = "WR"
	PositionTE   Position = "TE"
	PositionOL   Position = "OL"
	PositionDL   Position = "DL"
	PositionEDGE Position = "EDGE"
	PositionLB   Position = "LB"
	PositionCB   Position = "CB"
	PositionS    Position = "S"
	PositionK    Position = "K"
)

// Player is a roster member as seen by one simulation.
type Player struct {
	ID       int
	TeamID   int
	Name     string
	Position Position
	Rating   float64 // 0-100 overall
	Snaps    int     // expected snaps per full game
}

// RosterSnapshot is the read-only per-simulation view supplied by the
// franchise state store: teams, players, and current fatigue/injury state,
// keyed by season and week.
type RosterSnapshot struct {
	Season  int
	Week    int
	Teams   []Team
	Players map[int][]Player // team id -> roster
	Fatigue map[int]PlayerFatigueState
	Open    []InjuryRecord // unresolved injuries carried into this week
}

// PlayerFatigueState is the rolling fatigue value for one player on a
// bounded 0..100 scale. Owned by the injury engine; persisted between weeks.
type PlayerFatigueState struct {
	PlayerID int
	Fatigue  float64
	Week     int // last-updated week
}
