package schedule

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
)

// Default schedule configuration constants.
const (
	defaultWeeks           = 18
	targetGamesPerTeam     = 17
	divisionsPerConference = 4
	teamsPerDivision       = 4
	placementAttempts      = 24
)

// GameID builds the stable identifier for a scheduled game. A pairing is
// unique within a week, so the id survives replays: the same league and seed
// always yield the same ids.
func GameID(season, week, home, away int) string {
	return fmt.Sprintf("%d-w%02d-%d-%d", season, week, home, away)
}

// intraConferenceRotation fixes which division pairs play a full four-game
// series inside their own conference. The remaining pairs meet through
// ranked pairings instead.
var intraConferenceRotation = [][2]model.Division{
	{model.DivisionEast, model.DivisionWest},
	{model.DivisionNorth, model.DivisionSouth},
}

// crossConferenceRotation maps each first-conference division to the
// second-conference division it plays a full series against.
var crossConferenceRotation = map[model.Division]model.Division{
	model.DivisionEast:  model.DivisionNorth,
	model.DivisionNorth: model.DivisionSouth,
	model.DivisionSouth: model.DivisionWest,
	model.DivisionWest:  model.DivisionEast,
}

// extraGameRotation maps each first-conference division to the opposing
// division supplying the seventeenth game.
var extraGameRotation = map[model.Division]model.Division{
	model.DivisionEast:  model.DivisionSouth,
	model.DivisionNorth: model.DivisionWest,
	model.DivisionSouth: model.DivisionEast,
	model.DivisionWest:  model.DivisionNorth,
}

// matchup is a home/away pairing before week placement.
type matchup struct {
	home int
	away int
}

// Generator produces a season's fixture list. When every team carries
// conference and division metadata it composes the 17-game league schedule;
// otherwise it falls back to a round-robin.
type Generator struct {
	weeks            int
	doubleRoundRobin bool
	seed             int64
}

// NewGenerator creates a generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		weeks: defaultWeeks,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate builds the full set of scheduled games for a season. No team
// appears twice in the same week, and the fixture list is packed into the
// configured week budget, so a 17-game league lands every team exactly one
// bye across 18 weeks.
func (g *Generator) Generate(ctx context.Context, teams []model.Team, season int) ([]model.ScheduledGame, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("schedule generation cancelled: %w", err)
	}
	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 teams, got %d", ErrScheduleConstraint, len(teams))
	}

	byID := make(map[int]model.Team, len(teams))
	for _, t := range teams {
		if _, dup := byID[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate team id %d", ErrScheduleConstraint, t.ID)
		}
		byID[t.ID] = t
	}

	rng := rand.New(rand.NewSource(g.seed + int64(season))) //nolint:gosec // deterministic seed for reproducible scheduling

	structured := 0
	for _, t := range teams {
		if t.Structured() {
			structured++
		}
	}

	var weeks [][]matchup
	if structured == len(teams) {
		s, err := buildStructure(teams)
		if err != nil {
			return nil, err
		}
		fixtures := composeLeague(s)
		if err := verifyGameCounts(fixtures, teams, targetGamesPerTeam); err != nil {
			return nil, err
		}
		weeks, err = placeMatchups(fixtures, g.weeks, rng)
		if err != nil {
			return nil, err
		}
	} else {
		weeks = g.roundRobin(teams)
	}

	var games []model.ScheduledGame
	for weekIdx, pairings := range weeks {
		for _, m := range pairings {
			games = append(games, model.ScheduledGame{
				ID:     GameID(season, weekIdx+1, m.home, m.away),
				Season: season,
				Week:   weekIdx + 1,
				HomeID: m.home,
				AwayID: m.away,
				Kind:   classify(byID[m.home], byID[m.away]),
			})
		}
	}
	return games, nil
}

// leagueStructure holds teams grouped by conference and division, each
// division sorted by rating descending then id.
type leagueStructure struct {
	conferences []model.Conference
	divisions   map[model.Conference]map[model.Division][]model.Team
}

func buildStructure(teams []model.Team) (*leagueStructure, error) {
	divisions := make(map[model.Conference]map[model.Division][]model.Team)
	for _, t := range teams {
		if divisions[t.Conference] == nil {
			divisions[t.Conference] = make(map[model.Division][]model.Team)
		}
		divisions[t.Conference][t.Division] = append(divisions[t.Conference][t.Division], t)
	}

	if len(divisions) != 2 {
		return nil, fmt.Errorf("%w: league schedule needs exactly 2 conferences, got %d", ErrScheduleConstraint, len(divisions))
	}

	var conferences []model.Conference
	for conf := range divisions {
		conferences = append(conferences, conf)
	}
	sort.Slice(conferences, func(i, j int) bool { return conferences[i] < conferences[j] })

	for _, conf := range conferences {
		if len(divisions[conf]) != divisionsPerConference {
			return nil, fmt.Errorf("%w: conference %s has %d divisions, want %d",
				ErrScheduleConstraint, conf, len(divisions[conf]), divisionsPerConference)
		}
		for _, div := range model.DivisionOrder {
			members := divisions[conf][div]
			if len(members) != teamsPerDivision {
				return nil, fmt.Errorf("%w: %s %s has %d teams, want %d",
					ErrScheduleConstraint, conf, div, len(members), teamsPerDivision)
			}
			sort.Slice(members, func(i, j int) bool {
				if members[i].Rating != members[j].Rating {
					return members[i].Rating > members[j].Rating
				}
				return members[i].ID < members[j].ID
			})
		}
	}

	return &leagueStructure{conferences: conferences, divisions: divisions}, nil
}

// composeLeague assembles the 17-game slate: divisional home-and-away (6),
// primary intra-conference rotation (4), secondary ranked pairings (2),
// cross-conference rotation (4), and the extra cross-conference game (1).
func composeLeague(s *leagueStructure) []matchup {
	var fixtures []matchup

	for _, conf := range s.conferences {
		for _, div := range model.DivisionOrder {
			fixtures = append(fixtures, divisionalSeries(s.divisions[conf][div])...)
		}
	}

	for _, conf := range s.conferences {
		for _, pair := range intraConferenceRotation {
			fixtures = append(fixtures, fullSeries(s.divisions[conf][pair[0]], s.divisions[conf][pair[1]])...)
		}
	}

	for _, conf := range s.conferences {
		for i, divA := range model.DivisionOrder {
			for _, divB := range model.DivisionOrder[i+1:] {
				if isRotationPair(divA, divB) {
					continue
				}
				fixtures = append(fixtures, rankedPairings(s.divisions[conf][divA], s.divisions[conf][divB], divA < divB)...)
			}
		}
	}

	first, second := s.conferences[0], s.conferences[1]
	for _, div := range model.DivisionOrder {
		fixtures = append(fixtures, fullSeries(s.divisions[first][div], s.divisions[second][crossConferenceRotation[div]])...)
	}

	for i, div := range model.DivisionOrder {
		fixtures = append(fixtures, rankedPairings(s.divisions[first][div], s.divisions[second][extraGameRotation[div]], i%2 == 0)...)
	}

	return fixtures
}

// divisionalSeries schedules every same-division pairing home and away.
func divisionalSeries(teams []model.Team) []matchup {
	var fixtures []matchup
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			fixtures = append(fixtures,
				matchup{home: teams[i].ID, away: teams[j].ID},
				matchup{home: teams[j].ID, away: teams[i].ID},
			)
		}
	}
	return fixtures
}

// fullSeries pairs every team of one division against every team of another,
// alternating home advantage.
func fullSeries(divisionA, divisionB []model.Team) []matchup {
	var fixtures []matchup
	for i, a := range divisionA {
		for j, b := range divisionB {
			if (i+j)%2 == 0 {
				fixtures = append(fixtures, matchup{home: a.ID, away: b.ID})
			} else {
				fixtures = append(fixtures, matchup{home: b.ID, away: a.ID})
			}
		}
	}
	return fixtures
}

// rankedPairings matches same-ranked teams of two divisions for a single
// game each, alternating home advantage down the ranking.
func rankedPairings(divisionA, divisionB []model.Team, preferHomeFromA bool) []matchup {
	var fixtures []matchup
	limit := len(divisionA)
	if len(divisionB) < limit {
		limit = len(divisionB)
	}
	for idx := 0; idx < limit; idx++ {
		homeIsA := preferHomeFromA
		if idx%2 == 1 {
			homeIsA = !homeIsA
		}
		if homeIsA {
			fixtures = append(fixtures, matchup{home: divisionA[idx].ID, away: divisionB[idx].ID})
		} else {
			fixtures = append(fixtures, matchup{home: divisionB[idx].ID, away: divisionA[idx].ID})
		}
	}
	return fixtures
}

func isRotationPair(a, b model.Division) bool {
	for _, pair := range intraConferenceRotation {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

func verifyGameCounts(fixtures []matchup, teams []model.Team, target int) error {
	counts := make(map[int]int, len(teams))
	for _, m := range fixtures {
		counts[m.home]++
		counts[m.away]++
	}
	for _, t := range teams {
		if counts[t.ID] != target {
			return fmt.Errorf("%w: team %d drew %d games, want %d", ErrScheduleConstraint, t.ID, counts[t.ID], target)
		}
	}
	return nil
}

// placeMatchups assigns fixtures to weeks inside the fixed budget, never
// booking a team twice in one week. Fixtures go first-fit after a seeded
// shuffle; when one has no conflict-free week left, a two-week chain swap
// frees a slot for it. Attempts repeat with fresh shuffles before giving up.
func placeMatchups(fixtures []matchup, weekCount int, rng *rand.Rand) ([][]matchup, error) {
	for attempt := 0; attempt < placementAttempts; attempt++ {
		shuffled := make([]matchup, len(fixtures))
		copy(shuffled, fixtures)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		if weeks, ok := tryPlacement(shuffled, weekCount); ok {
			return weeks, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot place %d fixtures into %d weeks", ErrScheduleConstraint, len(fixtures), weekCount)
}

func tryPlacement(fixtures []matchup, weekCount int) ([][]matchup, bool) {
	plan := make([]*weekPlan, weekCount)
	for i := range plan {
		plan[i] = &weekPlan{busy: make(map[int]int)}
	}

	for _, m := range fixtures {
		if w := firstFreeWeek(plan, m); w >= 0 {
			plan[w].add(m)
			continue
		}
		if !swapIn(plan, m) {
			return nil, false
		}
	}

	weeks := make([][]matchup, 0, weekCount)
	for _, wp := range plan {
		if len(wp.games) > 0 {
			weeks = append(weeks, wp.games)
		}
	}
	return weeks, true
}

// weekPlan tracks one week's pairings plus a team -> game index for O(1)
// conflict checks during placement.
type weekPlan struct {
	games []matchup
	busy  map[int]int
}

func (wp *weekPlan) occupied(team int) bool {
	_, ok := wp.busy[team]
	return ok
}

func (wp *weekPlan) gameFor(team int) (matchup, bool) {
	idx, ok := wp.busy[team]
	if !ok {
		return matchup{}, false
	}
	return wp.games[idx], true
}

func (wp *weekPlan) add(m matchup) {
	wp.busy[m.home] = len(wp.games)
	wp.busy[m.away] = len(wp.games)
	wp.games = append(wp.games, m)
}

func (wp *weekPlan) remove(m matchup) {
	idx, ok := wp.busy[m.home]
	if !ok {
		return
	}
	last := len(wp.games) - 1
	delete(wp.busy, m.home)
	delete(wp.busy, m.away)
	if idx != last {
		moved := wp.games[last]
		wp.games[idx] = moved
		wp.busy[moved.home] = idx
		wp.busy[moved.away] = idx
	}
	wp.games = wp.games[:last]
}

func firstFreeWeek(plan []*weekPlan, m matchup) int {
	for w, wp := range plan {
		if !wp.occupied(m.home) && !wp.occupied(m.away) {
			return w
		}
	}
	return -1
}

// swapIn places a fixture whose teams are never free in the same week: pick a
// week where the home side is idle and one where the away side is, then flip
// the alternating chain of games between those two weeks so the away side's
// conflict moves out of the first. The chain is a simple path in the two-week
// conflict graph, so flipping it keeps every team at one game per week.
func swapIn(plan []*weekPlan, m matchup) bool {
	for w1 := range plan {
		if plan[w1].occupied(m.home) {
			continue
		}
		for w2 := range plan {
			if w1 == w2 || plan[w2].occupied(m.away) {
				continue
			}
			if flipChain(plan, w1, w2, m.away, m.home) {
				plan[w1].add(m)
				return true
			}
		}
	}
	return false
}

// flipChain walks the alternating w1/w2 game chain starting from the given
// team's w1 game and moves every game on it to the opposite week. Chains that
// touch the avoid team are rejected: flipping one would re-book that team in
// the week being cleared.
func flipChain(plan []*weekPlan, w1, w2 int, start, avoid int) bool {
	type hop struct {
		game matchup
		from int
	}

	var path []hop
	team, cur := start, w1
	for {
		game, ok := plan[cur].gameFor(team)
		if !ok {
			break
		}
		if game.home == avoid || game.away == avoid {
			return false
		}
		path = append(path, hop{game: game, from: cur})
		if game.home == team {
			team = game.away
		} else {
			team = game.home
		}
		if cur == w1 {
			cur = w2
		} else {
			cur = w1
		}
	}

	for _, h := range path {
		plan[h.from].remove(h.game)
	}
	for _, h := range path {
		if h.from == w1 {
			plan[w2].add(h.game)
		} else {
			plan[w1].add(h.game)
		}
	}
	return true
}

// roundRobin builds the fallback schedule via the circle method. Odd team
// counts get one bye per round; the double option replays every pairing with
// home advantage swapped.
func (g *Generator) roundRobin(teams []model.Team) [][]matchup {
	ids := make([]int, 0, len(teams)+1)
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	sort.Ints(ids)

	const bye = -1
	if len(ids)%2 == 1 {
		ids = append(ids, bye)
	}

	n := len(ids)
	rounds := make([][]matchup, 0, n-1)
	for round := 0; round < n-1; round++ {
		var pairings []matchup
		for i := 0; i < n/2; i++ {
			a, b := ids[i], ids[n-1-i]
			if a == bye || b == bye {
				continue
			}
			if round%2 == 0 {
				pairings = append(pairings, matchup{home: a, away: b})
			} else {
				pairings = append(pairings, matchup{home: b, away: a})
			}
		}
		rounds = append(rounds, pairings)

		// Rotate all but the first entry.
		last := ids[n-1]
		copy(ids[2:], ids[1:n-1])
		ids[1] = last
	}

	if g.doubleRoundRobin {
		for _, round := range rounds[:len(rounds):len(rounds)] {
			swapped := make([]matchup, len(round))
			for i, m := range round {
				swapped[i] = matchup{home: m.away, away: m.home}
			}
			rounds = append(rounds, swapped)
		}
	}

	return rounds
}

func classify(home, away model.Team) model.MatchupKind {
	if !home.Structured() || !away.Structured() {
		return ""
	}
	switch {
	case home.Conference == away.Conference && home.Division == away.Division:
		return model.MatchupDivision
	case home.Conference == away.Conference:
		return model.MatchupConference
	default:
		return model.MatchupCrossConference
	}
}
