package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/metrics"
)

// seasonState is everything the store holds for one season.
type seasonState struct {
	teams    []model.Team
	players  map[int][]model.Player
	fatigue  map[int]model.PlayerFatigueState
	injuries []model.InjuryRecord
	results  map[string]model.GameResult // keyed by scheduled game id
}

// MemoryStore is an in-memory Store implementation. All reads return copies
// so callers can never mutate store state through a snapshot.
type MemoryStore struct {
	mu             sync.RWMutex
	seasons        map[int]*seasonState
	resultCapacity int
}

// NewMemoryStore constructs a memory store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		seasons:        make(map[int]*seasonState),
		resultCapacity: defaultResultCapacity,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SaveRoster registers the season's teams and rosters.
func (s *MemoryStore) SaveRoster(ctx context.Context, season int, teams []model.Team, players map[int][]model.Player) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save roster: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.season(season)
	st.teams = append([]model.Team(nil), teams...)
	st.players = make(map[int][]model.Player, len(players))
	for teamID, roster := range players {
		st.players[teamID] = append([]model.Player(nil), roster...)
	}
	return nil
}

// Snapshot returns the read-only roster view for one season week: teams,
// rosters, latest fatigue, and injuries still open entering the week.
func (s *MemoryStore) Snapshot(ctx context.Context, season, week int) (model.RosterSnapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return model.RosterSnapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.seasons[season]
	if !ok || len(st.teams) == 0 {
		return model.RosterSnapshot{}, fmt.Errorf("season %d: %w", season, ErrSnapshotNotFound)
	}

	snap := model.RosterSnapshot{
		Season:  season,
		Week:    week,
		Teams:   append([]model.Team(nil), st.teams...),
		Players: make(map[int][]model.Player, len(st.players)),
		Fatigue: make(map[int]model.PlayerFatigueState, len(st.fatigue)),
	}
	for teamID, roster := range st.players {
		snap.Players[teamID] = append([]model.Player(nil), roster...)
	}
	for playerID, state := range st.fatigue {
		snap.Fatigue[playerID] = state
	}
	for _, inj := range st.injuries {
		if !inj.Resolved(week) {
			snap.Open = append(snap.Open, inj)
		}
	}
	return snap, nil
}

// SaveFatigue persists post-week fatigue values, overwriting prior state.
func (s *MemoryStore) SaveFatigue(ctx context.Context, season int, states []model.PlayerFatigueState) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save fatigue: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.season(season)
	for _, state := range states {
		st.fatigue[state.PlayerID] = state
	}
	return nil
}

// SaveInjuries appends newly generated injuries.
func (s *MemoryStore) SaveInjuries(ctx context.Context, season int, records []model.InjuryRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save injuries: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.season(season)
	st.injuries = append(st.injuries, records...)
	return nil
}

// SaveResult persists one finished game exactly once.
func (s *MemoryStore) SaveResult(ctx context.Context, result model.GameResult) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.season(result.Season)
	if _, exists := st.results[result.GameID]; exists {
		return fmt.Errorf("game %s: %w", result.GameID, ErrDuplicateResult)
	}
	st.results[result.GameID] = result

	total := 0
	for _, season := range s.seasons {
		total += len(season.results)
	}
	metrics.UpdateStoreResults(total)
	return nil
}

// Results returns all saved results for a season week, ordered by game id.
func (s *MemoryStore) Results(ctx context.Context, season, week int) ([]model.GameResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.seasons[season]
	if !ok {
		return nil, nil
	}

	out := make([]model.GameResult, 0, s.resultCapacity)
	for _, r := range st.results {
		if r.Week == week {
			out = append(out, r)
		}
	}
	sortResults(out)
	return out, nil
}

// SeasonResults returns every saved result for a season in (week, game id)
// order.
func (s *MemoryStore) SeasonResults(ctx context.Context, season int) ([]model.GameResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("season results: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.seasons[season]
	if !ok {
		return nil, nil
	}

	out := make([]model.GameResult, 0, len(st.results))
	for _, r := range st.results {
		out = append(out, r)
	}
	sortResults(out)
	return out, nil
}

// season returns the state for a season, creating it on first use.
// Callers must hold the write lock.
func (s *MemoryStore) season(season int) *seasonState {
	st, ok := s.seasons[season]
	if !ok {
		st = &seasonState{
			players: make(map[int][]model.Player),
			fatigue: make(map[int]model.PlayerFatigueState),
			results: make(map[string]model.GameResult),
		}
		s.seasons[season] = st
	}
	return st
}

func sortResults(results []model.GameResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Week != results[j].Week {
			return results[i].Week < results[j].Week
		}
		return results[i].GameID < results[j].GameID
	})
}
