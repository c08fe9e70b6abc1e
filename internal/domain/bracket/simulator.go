// Package bracket seeds and runs the single-elimination postseason.
package bracket

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/standings"
	"github.com/okian/gridiron/pkg/metrics"
)

// Default bracket configuration constants.
const (
	defaultSeedsPerConference = 7
)

// Round names by teams remaining in a conference.
const (
	roundWildCard     = "Wild Card"
	roundDivisional   = "Divisional"
	roundConference   = "Conference Championship"
	roundChampionship = "Championship"
)

// Seed is one seeded postseason team.
type Seed struct {
	Number         int
	Team           model.Team
	DivisionWinner bool
}

// GameResolver runs one postseason game between two teams, higher seed at
// home, with ties disallowed. AdvanceWeek is called between rounds so that
// injuries and fatigue carry forward on the real postseason calendar.
type GameResolver interface {
	Resolve(ctx context.Context, round string, week int, home, away model.Team) (model.GameResult, error)
	AdvanceWeek(ctx context.Context)
}

// Simulator seeds the bracket from final standings and plays it out with
// reseeding: after every round the highest surviving seed faces the lowest.
type Simulator struct {
	seedsPerConference int
}

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithSeedsPerConference sets how many teams each conference sends.
func WithSeedsPerConference(seeds int) Option {
	return func(s *Simulator) {
		if seeds >= 1 {
			s.seedsPerConference = seeds
		}
	}
}

// NewSimulator creates a bracket simulator with configuration options.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		seedsPerConference: defaultSeedsPerConference,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Seed selects each conference's field: division winners ranked first by the
// tie-break cascade, then the best remaining records as wildcards, the same
// cascade applied within each selection tier.
func (s *Simulator) Seed(ctx context.Context, table *standings.Table) (map[model.Conference][]Seed, error) {
	teams := make(map[int]model.Team)
	conferences := make(map[model.Conference][]int)
	for _, id := range table.Teams() {
		rec, ok := table.Record(id)
		if !ok {
			continue
		}
		teams[id] = rec.Team
		conferences[rec.Team.Conference] = append(conferences[rec.Team.Conference], id)
	}

	if len(teams) < 2 {
		return nil, fmt.Errorf("%w: have %d", ErrInsufficientTeams, len(teams))
	}

	seeded := make(map[model.Conference][]Seed, len(conferences))
	for conf, members := range conferences {
		divisions := make(map[model.Division][]int)
		for _, id := range members {
			divisions[teams[id].Division] = append(divisions[teams[id].Division], id)
		}

		var winners []int
		isWinner := make(map[int]bool)
		for _, div := range divisions {
			ordered, err := table.Rank(ctx, div)
			if err != nil {
				return nil, err
			}
			winners = append(winners, ordered[0])
			isWinner[ordered[0]] = true
		}

		winners, err := table.Rank(ctx, winners)
		if err != nil {
			return nil, err
		}

		var rest []int
		for _, id := range members {
			if !isWinner[id] {
				rest = append(rest, id)
			}
		}
		wildcards, err := table.Rank(ctx, rest)
		if err != nil {
			return nil, err
		}

		field := append(winners, wildcards...)
		if len(field) > s.seedsPerConference {
			field = field[:s.seedsPerConference]
		}

		seeds := make([]Seed, 0, len(field))
		for i, id := range field {
			seeds = append(seeds, Seed{
				Number:         i + 1,
				Team:           teams[id],
				DivisionWinner: isWinner[id],
			})
		}
		seeded[conf] = seeds
	}

	return seeded, nil
}

// Run plays the bracket to completion: per-conference elimination rounds
// with reseeding, then a single championship game between the conference
// winners.
func (s *Simulator) Run(ctx context.Context, table *standings.Table, resolver GameResolver, startWeek int) (model.BracketResult, error) {
	seeded, err := s.Seed(ctx, table)
	if err != nil {
		return model.BracketResult{}, err
	}

	conferences := make([]model.Conference, 0, len(seeded))
	for conf := range seeded {
		conferences = append(conferences, conf)
	}
	sort.Slice(conferences, func(i, j int) bool { return conferences[i] < conferences[j] })

	var result model.BracketResult
	week := startWeek

	survivors := make(map[model.Conference][]Seed, len(seeded))
	maxRemaining := 0
	for conf, seeds := range seeded {
		survivors[conf] = seeds
		if len(seeds) > maxRemaining {
			maxRemaining = len(seeds)
		}
	}

	for maxRemaining > 1 {
		name := conferenceRoundName(maxRemaining)
		round := model.BracketRound{Name: name}

		for _, conf := range conferences {
			remaining := survivors[conf]
			if len(remaining) <= 1 {
				continue
			}
			next, games, slots, err := s.playConferenceRound(ctx, resolver, name, week, remaining)
			if err != nil {
				return model.BracketResult{}, err
			}
			survivors[conf] = next
			round.Games = append(round.Games, games...)
			round.Slots = append(round.Slots, slots...)
		}

		result.Rounds = append(result.Rounds, round)
		resolver.AdvanceWeek(ctx)
		week++

		maxRemaining = 0
		for _, remaining := range survivors {
			if len(remaining) > maxRemaining {
				maxRemaining = len(remaining)
			}
		}
	}

	var finalists []Seed
	for _, conf := range conferences {
		if len(survivors[conf]) == 1 {
			finalists = append(finalists, survivors[conf][0])
		}
	}

	switch len(finalists) {
	case 1:
		// Single-pool bracket: the last survivor is the champion.
		result.ChampionID = finalists[0].Team.ID
	case 2:
		home, away := finalists[0], finalists[1]
		if away.Number < home.Number {
			home, away = away, home
		}
		game, err := resolver.Resolve(ctx, roundChampionship, week, home.Team, away.Team)
		if err != nil {
			return model.BracketResult{}, err
		}
		winner := game.WinnerID()
		if winner == 0 {
			return model.BracketResult{}, fmt.Errorf("%w: %s", ErrUnresolvedGame, game.ID)
		}
		metrics.RecordPostseasonGame()
		result.Rounds = append(result.Rounds, model.BracketRound{
			Name:  roundChampionship,
			Games: []model.GameResult{game},
			Slots: championshipSlots(home, away, game),
		})
		result.ChampionID = winner
	default:
		return model.BracketResult{}, fmt.Errorf("%w: %d conference champions", ErrInsufficientTeams, len(finalists))
	}

	return result, nil
}

// playConferenceRound reseeds the survivors and pairs highest against
// lowest. An odd field gives the best remaining seed a bye.
func (s *Simulator) playConferenceRound(ctx context.Context, resolver GameResolver, round string, week int, remaining []Seed) ([]Seed, []model.GameResult, []model.BracketSlot, error) {
	ordered := append([]Seed(nil), remaining...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Number < ordered[j].Number })

	var next []Seed
	var games []model.GameResult
	var slots []model.BracketSlot

	lo, hi := 0, len(ordered)-1
	if len(ordered)%2 == 1 {
		next = append(next, ordered[0]) // bye for the top seed
		lo = 1
	}

	for lo < hi {
		high, low := ordered[lo], ordered[hi]
		game, err := resolver.Resolve(ctx, round, week, high.Team, low.Team)
		if err != nil {
			return nil, nil, nil, err
		}
		winnerID := game.WinnerID()
		if winnerID == 0 {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnresolvedGame, game.ID)
		}
		metrics.RecordPostseasonGame()

		winner := high
		if winnerID == low.Team.ID {
			winner = low
		}
		next = append(next, winner)
		games = append(games, game)
		slots = append(slots,
			seedSlot(round, high, game.HomeScore, winnerID != high.Team.ID),
			seedSlot(round, low, game.AwayScore, winnerID != low.Team.ID),
		)

		lo++
		hi--
	}

	return next, games, slots, nil
}

func seedSlot(round string, seed Seed, score int, eliminated bool) model.BracketSlot {
	return model.BracketSlot{
		Round:      round,
		Seed:       seed.Number,
		TeamID:     seed.Team.ID,
		Conference: seed.Team.Conference,
		Score:      score,
		Eliminated: eliminated,
	}
}

func championshipSlots(home, away Seed, game model.GameResult) []model.BracketSlot {
	return []model.BracketSlot{
		seedSlot(roundChampionship, home, game.HomeScore, game.WinnerID() != home.Team.ID),
		seedSlot(roundChampionship, away, game.AwayScore, game.WinnerID() != away.Team.ID),
	}
}

func conferenceRoundName(remaining int) string {
	switch {
	case remaining > 4:
		return roundWildCard
	case remaining > 2:
		return roundDivisional
	default:
		return roundConference
	}
}
