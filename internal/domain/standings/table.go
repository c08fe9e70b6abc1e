// Package standings folds game results into ranked team records.
package standings

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/metrics"
)

// Table accumulates team records for one season. Standings are always
// recomputed from the applied results; the table never stores a rank.
type Table struct {
	mu      sync.Mutex
	records map[int]*model.TeamRecord
	applied map[string]bool // result id -> folded in
}

// NewTable creates a table tracking the given teams.
func NewTable(teams []model.Team) *Table {
	records := make(map[int]*model.TeamRecord, len(teams))
	for _, team := range teams {
		records[team.ID] = &model.TeamRecord{
			Team:       team,
			HeadToHead: make(map[int]int),
		}
	}
	return &Table{
		records: records,
		applied: make(map[string]bool),
	}
}

// Apply folds a completed game into both teams' records exactly once.
// The mutation is atomic: on any validation failure nothing changes.
func (t *Table) Apply(ctx context.Context, result model.GameResult) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.applied[result.ID] {
		metrics.RecordStandingsError()
		return fmt.Errorf("%w: result %s", ErrDuplicateResult, result.ID)
	}
	home, ok := t.records[result.HomeID]
	if !ok {
		metrics.RecordStandingsError()
		return fmt.Errorf("%w: home team %d", ErrUnknownTeam, result.HomeID)
	}
	away, ok := t.records[result.AwayID]
	if !ok {
		metrics.RecordStandingsError()
		return fmt.Errorf("%w: away team %d", ErrUnknownTeam, result.AwayID)
	}

	t.applied[result.ID] = true
	recordSide(home, result.HomeScore, result.AwayScore, away.Team)
	recordSide(away, result.AwayScore, result.HomeScore, home.Team)

	switch {
	case result.HomeScore > result.AwayScore:
		home.HeadToHead[away.Team.ID]++
	case result.AwayScore > result.HomeScore:
		away.HeadToHead[home.Team.ID]++
	}

	return nil
}

func recordSide(rec *model.TeamRecord, scored, allowed int, opponent model.Team) {
	rec.PointsFor += scored
	rec.PointsAgainst += allowed

	sameDivision := rec.Team.Structured() && opponent.Structured() &&
		rec.Team.Conference == opponent.Conference && rec.Team.Division == opponent.Division

	switch {
	case scored > allowed:
		rec.Wins++
		if sameDivision {
			rec.DivisionWins++
		}
	case scored < allowed:
		rec.Losses++
		if sameDivision {
			rec.DivisionLosses++
		}
	default:
		rec.Ties++
		if sameDivision {
			rec.DivisionTies++
		}
	}
}

// Record returns a copy of one team's record.
func (t *Table) Record(teamID int) (model.TeamRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[teamID]
	if !ok {
		return model.TeamRecord{}, false
	}
	return copyRecord(rec), true
}

// Teams returns the ids of every tracked team.
func (t *Table) Teams() []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := make([]int, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Standings returns the full ranked order as derived entries.
func (t *Table) Standings(ctx context.Context) ([]model.StandingsEntry, error) {
	order, err := t.Rank(ctx, t.Teams())
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]model.StandingsEntry, 0, len(order))
	for i, id := range order {
		rec := copyRecord(t.records[id])
		entries = append(entries, model.StandingsEntry{
			Rank:      i + 1,
			Record:    rec,
			WinPct:    rec.WinPct(),
			PointDiff: rec.PointDiff(),
		})
	}
	return entries, nil
}

// Rank orders the given teams by the tie-break cascade: win percentage,
// head-to-head among exactly the tied teams, division record when the tied
// teams share a division, point differential, points scored, and finally
// team id. Each step partitions the current tied subgroup only; subgroups
// restart at the following step independently.
func (t *Table) Rank(ctx context.Context, teamIDs []int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking cancelled: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range teamIDs {
		if _, ok := t.records[id]; !ok {
			return nil, fmt.Errorf("%w: team %d", ErrUnknownTeam, id)
		}
	}

	metrics.RecordStandingsRecompute()

	group := append([]int(nil), teamIDs...)
	return t.rankGroup(group, 0)
}

// Tie-break steps, in cascade order.
const (
	stepWinPct = iota
	stepHeadToHead
	stepDivisionRecord
	stepPointDiff
	stepPointsFor
	stepTeamID
)

func (t *Table) rankGroup(group []int, step int) ([]int, error) {
	if len(group) <= 1 {
		return group, nil
	}

	switch step {
	case stepWinPct, stepHeadToHead, stepDivisionRecord, stepPointDiff, stepPointsFor:
		keys, applicable := t.stepKeys(group, step)
		if !applicable {
			return t.rankGroup(group, step+1)
		}
		return t.partition(group, keys, step)
	case stepTeamID:
		ordered := append([]int(nil), group...)
		sort.Ints(ordered)
		return ordered, nil
	default:
		return nil, fmt.Errorf("%w: %d teams still tied", ErrTieBreakExhausted, len(group))
	}
}

// stepKeys computes the sort key for each team at one cascade step. The
// division-record step reports itself inapplicable unless every tied team
// shares a division.
func (t *Table) stepKeys(group []int, step int) (map[int]float64, bool) {
	keys := make(map[int]float64, len(group))

	switch step {
	case stepWinPct:
		for _, id := range group {
			keys[id] = t.records[id].WinPct()
		}
	case stepHeadToHead:
		// Win rate, not raw wins: tied teams may have met group members a
		// different number of times. A team that never met another tied
		// team keys neutral.
		members := make(map[int]bool, len(group))
		for _, id := range group {
			members[id] = true
		}
		for _, id := range group {
			wins, games := 0, 0
			for opponent, count := range t.records[id].HeadToHead {
				if members[opponent] {
					wins += count
					games += count
				}
			}
			for opponent := range members {
				if opponent == id {
					continue
				}
				games += t.records[opponent].HeadToHead[id]
			}
			if games == 0 {
				keys[id] = 0.5
				continue
			}
			keys[id] = float64(wins) / float64(games)
		}
	case stepDivisionRecord:
		if !t.sameDivision(group) {
			return nil, false
		}
		for _, id := range group {
			keys[id] = t.records[id].DivisionWinPct()
		}
	case stepPointDiff:
		for _, id := range group {
			keys[id] = float64(t.records[id].PointDiff())
		}
	case stepPointsFor:
		for _, id := range group {
			keys[id] = float64(t.records[id].PointsFor)
		}
	}

	return keys, true
}

// partition splits the group by descending key and recurses into each tied
// subgroup at the next step.
func (t *Table) partition(group []int, keys map[int]float64, step int) ([]int, error) {
	ordered := append([]int(nil), group...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return keys[ordered[i]] > keys[ordered[j]]
	})

	var out []int
	for start := 0; start < len(ordered); {
		end := start + 1
		for end < len(ordered) && keys[ordered[end]] == keys[ordered[start]] {
			end++
		}
		sub, err := t.rankGroup(ordered[start:end], step+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
		start = end
	}
	return out, nil
}

func (t *Table) sameDivision(group []int) bool {
	first := t.records[group[0]].Team
	if !first.Structured() {
		return false
	}
	for _, id := range group[1:] {
		team := t.records[id].Team
		if !team.Structured() || team.Conference != first.Conference || team.Division != first.Division {
			return false
		}
	}
	return true
}

func copyRecord(rec *model.TeamRecord) model.TeamRecord {
	out := *rec
	out.HeadToHead = make(map[int]int, len(rec.HeadToHead))
	for id, wins := range rec.HeadToHead {
		out.HeadToHead[id] = wins
	}
	return out
}
