// Package injury models probabilistic injuries and fatigue accumulation.
package injury

import (
	"context"
	"math/rand"
	"sync"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/metrics"
)

// Fatigue model constants.
const (
	defaultFatiguePerSnap  = 0.32
	defaultFatigueRecovery = 18.0
	maxFatigue             = 100.0
	fatigueThreshold       = 60.0
	minSnapShare           = 0.35
	defaultSnaps           = 55
	maxPerSnapRate         = 0.25
	injuredStarterPenalty  = 4.0
	defaultRatingFloor     = 0.35
)

// defaultPositionRates gives the per-snap injury incidence by position.
// High-contact positions run hotter.
var defaultPositionRates = map[model.Position]float64{
	model.PositionQB:   0.00045,
	model.PositionRB:   0.00095,
	model.PositionWR:   0.0008,
	model.PositionTE:   0.00075,
	model.PositionOL:   0.0006,
	model.PositionDL:   0.00075,
	model.PositionEDGE: 0.00085,
	model.PositionLB:   0.0009,
	model.PositionCB:   0.0009,
	model.PositionS:    0.00085,
	model.PositionK:    0.0002,
}

const defaultPositionRate = 0.00075

// severityTier couples a severity with its draw probability and weeks-out
// range.
type severityTier struct {
	severity model.Severity
	prob     float64
	minWeeks int
	maxWeeks int
}

var defaultSeverityTiers = []severityTier{
	{model.SeverityMinor, 0.68, 1, 1},
	{model.SeverityModerate, 0.20, 2, 4},
	{model.SeveritySevere, 0.10, 5, 8},
	{model.SeveritySeasonEnding, 0.02, 9, 17},
}

var injuryDescriptions = map[model.Position][]string{
	model.PositionQB:   {"Shoulder sprain", "Ankle tweak", "Rib bruise"},
	model.PositionRB:   {"Hamstring pull", "High-ankle sprain", "Knee sprain"},
	model.PositionWR:   {"Hamstring pull", "Groin strain", "Foot sprain"},
	model.PositionTE:   {"Knee sprain", "Back spasms", "Shoulder sprain"},
	model.PositionOL:   {"Knee sprain", "Shoulder strain", "Back tightness"},
	model.PositionDL:   {"Calf strain", "Shoulder sprain", "Knee contusion"},
	model.PositionEDGE: {"Ankle sprain", "Groin strain", "Shoulder sprain"},
	model.PositionLB:   {"Shoulder sprain", "Knee sprain", "Ankle sprain"},
	model.PositionCB:   {"Hamstring pull", "Calf strain", "Knee sprain"},
	model.PositionS:    {"Shoulder sprain", "Hamstring pull", "Groin strain"},
	model.PositionK:    {"Hip flexor strain", "Quad strain"},
}

// Participant tracks one player's health state across the season.
type Participant struct {
	Player       model.Player
	Fatigue      float64
	InjuredWeeks int // weeks remaining until available
}

// ActiveSnaps returns the effective snaps given current fatigue and injury
// state. Injured players do not participate; high fatigue trims snaps down
// to a floor share.
func (p *Participant) ActiveSnaps() int {
	snaps := p.Player.Snaps
	if snaps <= 0 {
		snaps = defaultSnaps
	}
	if p.InjuredWeeks > 0 {
		return 0
	}
	if p.Fatigue <= fatigueThreshold {
		return snaps
	}
	over := p.Fatigue - fatigueThreshold
	if over > maxFatigue {
		over = maxFatigue
	}
	share := 1.0 - over/(maxFatigue+1.0)
	if share < minSnapShare {
		share = minSnapShare
	}
	return int(float64(snaps) * share)
}

// Engine owns per-player fatigue and injury state for one season and
// generates per-game injuries. Methods that mutate state are serialized
// internally; randomness comes from the per-game stream the caller passes,
// so outcomes stay reproducible under parallel week execution.
type Engine struct {
	mu sync.Mutex

	rosters map[int][]*Participant // team id -> roster

	positionRates   map[model.Position]float64
	severityTiers   []severityTier
	fatiguePerSnap  float64
	fatigueRecovery float64
	ratingFloor     float64
}

// NewEngine creates an injury engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		rosters:         make(map[int][]*Participant),
		positionRates:   defaultPositionRates,
		severityTiers:   defaultSeverityTiers,
		fatiguePerSnap:  defaultFatiguePerSnap,
		fatigueRecovery: defaultFatigueRecovery,
		ratingFloor:     defaultRatingFloor,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// LoadRoster seeds a team's participants from a snapshot, restoring carried
// fatigue and unresolved injuries.
func (e *Engine) LoadRoster(teamID int, players []model.Player, fatigue map[int]model.PlayerFatigueState, open []model.InjuryRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	unresolved := make(map[int]int, len(open))
	for _, rec := range open {
		unresolved[rec.PlayerID] = rec.WeeksOut
	}

	roster := make([]*Participant, 0, len(players))
	for _, p := range players {
		part := &Participant{Player: p}
		if st, ok := fatigue[p.ID]; ok {
			part.Fatigue = st.Fatigue
		}
		if weeks, ok := unresolved[p.ID]; ok {
			part.InjuredWeeks = weeks
		}
		roster = append(roster, part)
	}
	e.rosters[teamID] = roster
}

// SimulateGame applies one game's load to a team: it accrues fatigue for
// every active player and draws new injuries from the position-specific
// incidence distribution. Cumulative fatigue raises the per-snap rate
// multiplicatively. Players carrying an unresolved injury neither play nor
// accrue anything.
func (e *Engine) SimulateGame(ctx context.Context, rng *rand.Rand, gameID string, week, teamID int) ([]model.InjuryRecord, []model.FatigueDelta) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var injuries []model.InjuryRecord
	var deltas []model.FatigueDelta

	for _, part := range e.rosters[teamID] {
		snaps := part.ActiveSnaps()
		if snaps <= 0 {
			continue
		}

		rate := e.rateForPosition(part.Player.Position)
		rate *= 1.0 + part.Fatigue/maxFatigue
		if rate > maxPerSnapRate {
			rate = maxPerSnapRate
		}
		probability := 1.0 - pow1m(rate, snaps)
		if rng.Float64() < probability {
			tier := e.rollSeverity(rng)
			weeksOut := tier.minWeeks
			if tier.maxWeeks > tier.minWeeks {
				weeksOut += rng.Intn(tier.maxWeeks - tier.minWeeks + 1)
			}
			part.InjuredWeeks = weeksOut
			injuries = append(injuries, model.InjuryRecord{
				PlayerID:     part.Player.ID,
				TeamID:       teamID,
				GameID:       gameID,
				Severity:     tier.severity,
				Description:  pickDescription(rng, part.Player.Position),
				WeeksOut:     weeksOut,
				OccurredWeek: week,
				RecoveryWeek: week + weeksOut,
			})
			metrics.RecordInjury(string(tier.severity))
		}

		delta := float64(snaps) * e.fatiguePerSnap
		if part.Fatigue+delta > maxFatigue {
			delta = maxFatigue - part.Fatigue
		}
		part.Fatigue += delta
		deltas = append(deltas, model.FatigueDelta{PlayerID: part.Player.ID, Delta: delta})
		metrics.RecordFatigueLevel(part.Fatigue)
	}

	return injuries, deltas
}

// RestWeek advances the calendar one week: injured players tick down toward
// recovery and everyone sheds fatigue.
func (e *Engine) RestWeek(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, roster := range e.rosters {
		for _, part := range roster {
			if part.InjuredWeeks > 0 {
				part.InjuredWeeks--
			}
			if part.Fatigue > 0 {
				part.Fatigue -= e.fatigueRecovery
				if part.Fatigue < 0 {
					part.Fatigue = 0
				}
			}
		}
	}
}

// AvailabilityPenalty returns the team rating penalty driven by unavailable
// starters and elevated fatigue.
func (e *Engine) AvailabilityPenalty(teamID int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var penalty float64
	for _, part := range e.rosters[teamID] {
		if part.InjuredWeeks > 0 {
			penalty += injuredStarterPenalty
			continue
		}
		if part.Fatigue > fatigueThreshold {
			penalty += (part.Fatigue - fatigueThreshold) / 10.0
		}
	}
	return penalty
}

// EffectiveRating returns a player's rating degraded by fatigue:
// base x (1 - penalty), floored at the configured minimum share.
func (e *Engine) EffectiveRating(p *Participant) float64 {
	factor := 1.0
	if p.Fatigue > fatigueThreshold {
		over := p.Fatigue - fatigueThreshold
		factor = 1.0 - over/(maxFatigue+1.0)
	}
	if factor < e.ratingFloor {
		factor = e.ratingFloor
	}
	return p.Player.Rating * factor
}

// ActiveRoster returns the team's available participants, skipping players
// carrying an unresolved injury.
func (e *Engine) ActiveRoster(teamID int) []*Participant {
	e.mu.Lock()
	defer e.mu.Unlock()

	var active []*Participant
	for _, part := range e.rosters[teamID] {
		if part.InjuredWeeks > 0 {
			continue
		}
		active = append(active, part)
	}
	return active
}

// RosterSize returns how many participants a team has loaded, injured or not.
func (e *Engine) RosterSize(teamID int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.rosters[teamID])
}

// FatigueStates exports the current fatigue of every tracked player for
// persistence by the state store.
func (e *Engine) FatigueStates(week int) []model.PlayerFatigueState {
	e.mu.Lock()
	defer e.mu.Unlock()

	var states []model.PlayerFatigueState
	for _, roster := range e.rosters {
		for _, part := range roster {
			states = append(states, model.PlayerFatigueState{
				PlayerID: part.Player.ID,
				Fatigue:  part.Fatigue,
				Week:     week,
			})
		}
	}
	return states
}

// Fatigue returns the current fatigue value for one player, or zero if the
// player is untracked.
func (e *Engine) Fatigue(playerID int) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, roster := range e.rosters {
		for _, part := range roster {
			if part.Player.ID == playerID {
				return part.Fatigue
			}
		}
	}
	return 0
}

func (e *Engine) rateForPosition(pos model.Position) float64 {
	if rate, ok := e.positionRates[pos]; ok {
		return rate
	}
	return defaultPositionRate
}

func (e *Engine) rollSeverity(rng *rand.Rand) severityTier {
	roll := rng.Float64()
	cumulative := 0.0
	for _, tier := range e.severityTiers {
		cumulative += tier.prob
		if roll <= cumulative {
			return tier
		}
	}
	return e.severityTiers[len(e.severityTiers)-1]
}

func pickDescription(rng *rand.Rand, pos model.Position) string {
	candidates, ok := injuryDescriptions[pos]
	if !ok || len(candidates) == 0 {
		return "Soft-tissue strain"
	}
	return candidates[rng.Intn(len(candidates))]
}

// pow1m computes (1-rate)^n without pulling in math.Pow for small n.
func pow1m(rate float64, n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= 1.0 - rate
	}
	return out
}
