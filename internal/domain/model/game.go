package model

// MatchupKind classifies a scheduled game by the structural relationship
// between its two teams.
type MatchupKind string

// Matchup kinds.
const (
	MatchupDivision        MatchupKind = "division"
	MatchupConference      MatchupKind = "conference"
	MatchupCrossConference MatchupKind = "cross-conference"
)

// ScheduledGame is one fixture produced by the schedule generator. Created
// once; only Played is mutated afterwards.
type ScheduledGame struct {
	ID     string // stable season/week/pairing key, replay-safe
	Season int
	Week   int
	HomeID int
	AwayID int
	Kind   MatchupKind
	Played bool
}

// DriveResult is the terminal outcome of a single offensive drive.
type DriveResult string

// Drive outcomes.
const (
	DriveTD       DriveResult = "TD"
	DriveFG       DriveResult = "FG"
	DrivePunt     DriveResult = "Punt"
	DriveTurnover DriveResult = "Turnover"
)

// Points returns the points scored by the offense on this outcome.
func (r DriveResult) Points() int {
	switch r {
	case DriveTD:
		return 7
	case DriveFG:
		return 3
	default:
		return 0
	}
}

// Drive is one entry in a game's drive log.
type Drive struct {
	Offense string // "home" or "away"
	Result  DriveResult
	Yards   int
	Minutes float64
}

// StatLine is one player's production in one game.
type StatLine struct {
	PlayerID      int
	Name          string
	Position      Position
	PassYards     int
	RushYards     int
	RecvYards     int
	Touchdowns    int
	Interceptions int
	Sacks         int
	Summary       string // rendered line, e.g. "24/35 for 287 yds and 2 TDs"
}

// Yards returns the total yardage across phases, used by the narrative
// validator's tolerance check.
func (s StatLine) Yards() int {
	return s.PassYards + s.RushYards + s.RecvYards
}

// Highlight is a memorable moment extracted from the drive log.
type Highlight struct {
	Offense    string
	Result     DriveResult
	Descriptor string
	Yards      int
	DriveIndex int
}

// FatigueDelta records the fatigue applied to one player by one game.
type FatigueDelta struct {
	PlayerID int
	Delta    float64
}

// GameResult is the authoritative fact record for one played game. Created
// exactly once per ScheduledGame and immutable afterwards; standings and the
// narrative validator consume it.
type GameResult struct {
	ID         string // uuid
	GameID     string
	Season     int
	Week       int
	HomeID     int
	AwayID     int
	HomeScore  int
	AwayScore  int
	WinProb    float64 // pre-game home win probability
	Overtime   bool
	Headline   string
	Highlights []Highlight
	Drives     []Drive
	HomeStats  []StatLine
	AwayStats  []StatLine
	Injuries   []InjuryRecord
	Fatigue    []FatigueDelta
}

// WinnerID returns the winning team id, or 0 for a tie.
func (g GameResult) WinnerID() int {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeID
	case g.AwayScore > g.HomeScore:
		return g.AwayID
	default:
		return 0
	}
}

// StatLineFor finds a player's stat line in either team's list.
func (g GameResult) StatLineFor(playerID int) (StatLine, bool) {
	for _, s := range g.HomeStats {
		if s.PlayerID == playerID {
			return s, true
		}
	}
	for _, s := range g.AwayStats {
		if s.PlayerID == playerID {
			return s, true
		}
	}
	return StatLine{}, false
}
