package model

// TeamRecord accumulates a team's season results. Identity fields are set at
// season start; the tallies are mutated only by the standings engine.
type TeamRecord struct {
	Team          Team
	Wins          int
	Losses        int
	Ties          int
	PointsFor     int
	PointsAgainst int
	// HeadToHead counts wins against each opponent faced this season.
	HeadToHead map[int]int
	// Division tallies cover same-division games only.
	DivisionWins   int
	DivisionLosses int
	DivisionTies   int
}

// GamesPlayed returns the total number of decided games.
func (r TeamRecord) GamesPlayed() int {
	return r.Wins + r.Losses + r.Ties
}

// WinPct returns the win percentage with ties counted as half-wins.
func (r TeamRecord) WinPct() float64 {
	n := r.GamesPlayed()
	if n == 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(n)
}

// PointDiff returns points scored minus points allowed.
func (r TeamRecord) PointDiff() int {
	return r.PointsFor - r.PointsAgainst
}

// DivisionWinPct returns the win percentage within the team's division.
func (r TeamRecord) DivisionWinPct() float64 {
	n := r.DivisionWins + r.DivisionLosses + r.DivisionTies
	if n == 0 {
		return 0
	}
	return (float64(r.DivisionWins) + 0.5*float64(r.DivisionTies)) / float64(n)
}

// StandingsEntry is a derived ranking row, recomputed from TeamRecord on
// demand and never persisted independently.
type StandingsEntry struct {
	Rank      int
	Record    TeamRecord
	WinPct    float64
	PointDiff int
}

// BracketSlot is one team's placement in a postseason round. Created when
// the bracket is seeded, updated as the round resolves.
type BracketSlot struct {
	Round      string
	Seed       int
	TeamID     int
	Conference Conference
	Score      int
	Eliminated bool
}

// BracketRound is one resolved elimination round.
type BracketRound struct {
	Name  string
	Slots []BracketSlot
	Games []GameResult
}

// BracketResult is the completed postseason bracket.
type BracketResult struct {
	Rounds     []BracketRound
	ChampionID int
}
