// Package repository defines the franchise state store boundary and errors.
package repository

import (
	"context"

	"github.com/okian/gridiron/internal/domain/model"
)

// Store provides read/write access to persistent franchise state: rosters,
// fatigue, injuries, and finished game results. The engine reads a snapshot
// per simulated week and writes back the state the week produced.
type Store interface {
	// Snapshot returns the read-only roster view for one season week.
	// Returns ErrSnapshotNotFound if no roster was loaded for the season.
	Snapshot(ctx context.Context, season, week int) (model.RosterSnapshot, error)

	// SaveRoster registers the season's teams and rosters. Called once
	// before week 1; later snapshots derive from it plus saved state.
	SaveRoster(ctx context.Context, season int, teams []model.Team, players map[int][]model.Player) error

	// SaveFatigue persists post-week fatigue values.
	SaveFatigue(ctx context.Context, season int, states []model.PlayerFatigueState) error

	// SaveInjuries appends newly generated injuries.
	SaveInjuries(ctx context.Context, season int, records []model.InjuryRecord) error

	// SaveResult persists one finished game. Returns ErrDuplicateResult
	// when the same game id was already saved.
	SaveResult(ctx context.Context, result model.GameResult) error

	// Results returns all saved results for a season week, ordered by
	// game id for determinism.
	Results(ctx context.Context, season, week int) ([]model.GameResult, error)

	// SeasonResults returns every saved result for a season in
	// (week, game id) order.
	SeasonResults(ctx context.Context, season int) ([]model.GameResult, error)
}
