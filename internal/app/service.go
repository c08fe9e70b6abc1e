// Package service provides the season orchestrator: it owns the weekly
// simulation loop and coordinates the schedule, injury, game, standings,
// bracket, and narrative components.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"runtime"
	"sort"
	"sync"
	"time"

	gamequeue "github.com/okian/gridiron/internal/adapters/mq/queue"
	workerpool "github.com/okian/gridiron/internal/adapters/mq/worker"
	repository "github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/bracket"
	"github.com/okian/gridiron/internal/domain/dedupe"
	"github.com/okian/gridiron/internal/domain/gamesim"
	"github.com/okian/gridiron/internal/domain/injury"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/narrative"
	"github.com/okian/gridiron/internal/domain/schedule"
	"github.com/okian/gridiron/internal/domain/standings"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Service runs one franchise season end to end: schedule generation, weekly
// concurrent game resolution, standings maintenance, and the postseason.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	scheduler  *schedule.Generator
	injuries   *injury.Engine
	regularSim *gamesim.Simulator
	playoffSim *gamesim.Simulator
	table      *standings.Table
	bracketSim *bracket.Simulator
	validator  *narrative.Validator
	generator  narrative.Generator
	guard      dedupe.Guard
	jobQueue   gamequeue.Queue
	pool       *workerpool.Pool

	// Configuration
	season             int
	weeks              int
	rngSeed            int64
	workerCount        int
	queueSize          int
	homeFieldAdvantage float64
	driveBudget        int
	playoffSeeds       int
	yardsTolerance     int
	fatiguePerSnap     float64
	fatigueRecovery    float64

	// Season state
	started     bool
	teams       map[int]model.Team
	ratings     map[int]float64
	schedule    []model.ScheduledGame
	currentWeek int
	lastWeek    int
	recaps      map[string]narrative.Recap

	// Results resolved during a failed week attempt, held until the retry
	// folds them. Keyed by game id; the dedupe guard keeps their games from
	// being resolved twice.
	pending map[string]model.GameResult

	// Active week collection
	collector *weekCollector

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSeason sets the season year.
func WithSeason(season int) Option {
	return func(s *Service) {
		if season > 0 {
			s.season = season
		}
	}
}

// WithWeeks sets the regular-season length.
func WithWeeks(weeks int) Option {
	return func(s *Service) {
		if weeks > 0 {
			s.weeks = weeks
		}
	}
}

// WithSeed sets the master seed for deterministic replay.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.rngSeed = seed
	}
}

// WithWorkerCount sets the number of simulation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the game job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithHomeFieldAdvantage sets the home rating bonus.
func WithHomeFieldAdvantage(hfa float64) Option {
	return func(s *Service) {
		if hfa >= 0 {
			s.homeFieldAdvantage = hfa
		}
	}
}

// WithDriveBudget sets the regulation drive count per game.
func WithDriveBudget(budget int) Option {
	return func(s *Service) {
		if budget > 0 {
			s.driveBudget = budget
		}
	}
}

// WithPlayoffSeeds sets the number of postseason seeds per conference.
func WithPlayoffSeeds(seeds int) Option {
	return func(s *Service) {
		if seeds > 0 {
			s.playoffSeeds = seeds
		}
	}
}

// WithYardsTolerance sets the recap validation band.
func WithYardsTolerance(tolerance int) Option {
	return func(s *Service) {
		if tolerance >= 0 {
			s.yardsTolerance = tolerance
		}
	}
}

// WithFatigueModel tunes the per-snap accrual and weekly recovery rates.
func WithFatigueModel(perSnap, recovery float64) Option {
	return func(s *Service) {
		if perSnap > 0 {
			s.fatiguePerSnap = perSnap
		}
		if recovery > 0 {
			s.fatigueRecovery = recovery
		}
	}
}

// WithStore injects a franchise state store. Defaults to the in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithNarrativeGenerator injects the external recap generator. Without one,
// every game gets the deterministic template recap.
func WithNarrativeGenerator(g narrative.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		season:             2026,
		weeks:              18,
		rngSeed:            1,
		workerCount:        runtime.NumCPU(),
		queueSize:          512,
		homeFieldAdvantage: 55.0,
		driveBudget:        24,
		playoffSeeds:       7,
		yardsTolerance:     15,
		fatiguePerSnap:     0.32,
		fatigueRecovery:    18.0,
		teams:              make(map[int]model.Team),
		ratings:            make(map[int]float64),
		recaps:             make(map[string]narrative.Recap),
		pending:            make(map[string]model.GameResult),
		currentWeek:        1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("season")
	}

	s.logger.Info(ctx, "starting season orchestrator...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.scheduler = schedule.NewGenerator(
		schedule.WithSeed(s.rngSeed),
		schedule.WithWeeks(s.weeks),
	)
	s.injuries = injury.NewEngine(
		injury.WithFatiguePerSnap(s.fatiguePerSnap),
		injury.WithFatigueRecovery(s.fatigueRecovery),
	)
	s.regularSim = gamesim.NewSimulator(
		gamesim.WithHomeFieldAdvantage(s.homeFieldAdvantage),
		gamesim.WithDriveBudget(s.driveBudget),
	)
	s.playoffSim = gamesim.NewSimulator(
		gamesim.WithHomeFieldAdvantage(s.homeFieldAdvantage),
		gamesim.WithDriveBudget(s.driveBudget),
		gamesim.WithOvertime(true),
	)
	s.bracketSim = bracket.NewSimulator(
		bracket.WithSeedsPerConference(s.playoffSeeds),
	)
	s.validator = narrative.NewValidator(
		narrative.WithYardsTolerance(s.yardsTolerance),
	)
	s.guard = dedupe.NewInMemoryGuard()
	s.jobQueue = gamequeue.NewInMemoryQueue(
		gamequeue.WithCapacity(s.queueSize),
		gamequeue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, &gameResolver{svc: s}, &weekSink{svc: s})
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "season orchestrator started",
		logger.Int("season", s.season),
		logger.Int("weeks", s.weeks),
		logger.Int("workers", s.workerCount),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping season orchestrator...")

	if q, ok := s.jobQueue.(*gamequeue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "season orchestrator stopped")
}

// LoadLeague registers the season's teams and rosters, seeds ratings from
// team strength, and primes the injury engine and standings table.
func (s *Service) LoadLeague(ctx context.Context, teams []model.Team, players map[int][]model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return fmt.Errorf("%w: orchestrator not started", ErrSimulationState)
	}

	if err := s.store.SaveRoster(ctx, s.season, teams, players); err != nil {
		return fmt.Errorf("load league: %w", err)
	}

	s.teams = make(map[int]model.Team, len(teams))
	s.ratings = make(map[int]float64, len(teams))
	for _, t := range teams {
		s.teams[t.ID] = t
		s.ratings[t.ID] = t.Rating
	}
	s.table = standings.NewTable(teams)

	snap, err := s.store.Snapshot(ctx, s.season, 1)
	if err != nil {
		return fmt.Errorf("load league: %w", err)
	}
	for teamID, roster := range snap.Players {
		s.injuries.LoadRoster(teamID, roster, snap.Fatigue, snap.Open)
	}

	s.logger.Info(ctx, "league loaded",
		logger.Int("teams", len(teams)),
	)
	return nil
}

// GenerateSchedule builds the season schedule for the loaded league.
func (s *Service) GenerateSchedule(ctx context.Context) ([]model.ScheduledGame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.table == nil {
		return nil, fmt.Errorf("%w: league not loaded", ErrSimulationState)
	}

	teams := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })

	games, err := s.scheduler.Generate(ctx, teams, s.season)
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}

	s.schedule = games
	s.currentWeek = 1
	s.lastWeek = 0
	for _, g := range games {
		if g.Week > s.lastWeek {
			s.lastWeek = g.Week
		}
	}

	metrics.UpdateScheduledGames(len(games))
	s.logger.Info(ctx, "schedule generated",
		logger.Int("games", len(games)),
		logger.Int("weeks", s.lastWeek),
	)
	return games, nil
}

// SimulateWeek resolves every game of the current week concurrently, then
// applies the outcomes in deterministic order: standings, ratings, fatigue,
// injuries, recaps. Returns the week's results sorted by game id.
func (s *Service) SimulateWeek(ctx context.Context) ([]model.GameResult, error) {
	start := time.Now()

	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: schedule not generated", ErrSimulationState)
	}
	if s.currentWeek > s.lastWeek {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: regular season complete", ErrSimulationState)
	}

	week := s.currentWeek
	for i := range s.schedule {
		game := s.schedule[i]
		if game.Week != week || game.Played {
			continue
		}
		if s.injuries.RosterSize(game.HomeID) == 0 || s.injuries.RosterSize(game.AwayID) == 0 {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: game %s lacks a loaded roster", ErrSimulationState, game.ID)
		}
	}

	var jobs []gamequeue.Job
	for i := range s.schedule {
		game := s.schedule[i]
		if game.Week != week || game.Played {
			continue
		}
		// Replay guard: a retried week must not resolve a game twice, or
		// fatigue and injuries would be applied again.
		if s.guard.SeenAndRecord(ctx, game.ID) {
			continue
		}
		jobs = append(jobs, gamequeue.Job{Game: game, Seed: s.gameSeed(game)})
	}

	collector := newWeekCollector(len(jobs))
	s.collector = collector
	s.mu.Unlock()

	for _, job := range jobs {
		if !s.jobQueue.Enqueue(ctx, job) {
			s.guard.Unrecord(ctx, job.Game.ID)
			collector.complete(fmt.Errorf("enqueue failed for game %s", job.Game.ID))
		}
	}

	if err := collector.wait(ctx); err != nil {
		// Games that did resolve stay in the pending set, and their guard
		// entries stay with them, so a retried week folds them in without
		// applying fatigue and injuries twice.
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Assemble the whole week from the pending set: this attempt's results
	// plus any salvaged from an earlier failed attempt. The week folds only
	// when every game is accounted for.
	var results []model.GameResult
	for i := range s.schedule {
		game := s.schedule[i]
		if game.Week != week || game.Played {
			continue
		}
		result, ok := s.pending[game.ID]
		if !ok {
			return nil, fmt.Errorf("%w: game %s still unresolved", ErrWeekIncomplete, game.ID)
		}
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].GameID < results[j].GameID })

	for _, result := range results {
		if err := s.applyResult(ctx, result); err != nil {
			return nil, err
		}
	}

	for i := range s.schedule {
		if s.schedule[i].Week == week {
			s.schedule[i].Played = true
		}
	}
	for _, result := range results {
		delete(s.pending, result.GameID)
	}

	// Between-week recovery, then persist the carried state.
	s.injuries.RestWeek(ctx)
	if err := s.store.SaveFatigue(ctx, s.season, s.injuries.FatigueStates(week)); err != nil {
		return nil, fmt.Errorf("simulate week: %w", err)
	}

	s.currentWeek++
	metrics.RecordWeekDuration(float64(time.Since(start).Milliseconds()))
	s.logger.Info(ctx, "week simulated",
		logger.Int("week", week),
		logger.Int("games", len(results)),
	)
	return results, nil
}

// applyResult folds one finished game into season state. Caller holds the
// write lock; results arrive sorted so the fold is deterministic.
func (s *Service) applyResult(ctx context.Context, result model.GameResult) error {
	if err := s.table.Apply(ctx, result); err != nil {
		return fmt.Errorf("apply result: %w", err)
	}
	if err := s.store.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("apply result: %w", err)
	}
	if len(result.Injuries) > 0 {
		if err := s.store.SaveInjuries(ctx, s.season, result.Injuries); err != nil {
			return fmt.Errorf("apply result: %w", err)
		}
	}

	s.updateRatings(result)
	s.storeRecap(ctx, result)
	metrics.RecordGameSimulated()
	return nil
}

// updateRatings moves both Elo ratings toward the observed outcome.
func (s *Service) updateRatings(result model.GameResult) {
	var homeScore float64
	switch result.WinnerID() {
	case result.HomeID:
		homeScore = 1.0
	case result.AwayID:
		homeScore = 0.0
	default:
		homeScore = 0.5
	}

	expected := result.WinProb
	s.ratings[result.HomeID] = gamesim.ApplyResult(s.ratings[result.HomeID], expected, homeScore, 0)
	s.ratings[result.AwayID] = gamesim.ApplyResult(s.ratings[result.AwayID], 1.0-expected, 1.0-homeScore, 0)
}

// storeRecap produces the game's recap: generated and validated when a
// generator is configured, template otherwise. A recap that contradicts the
// computed facts is discarded for the template.
func (s *Service) storeRecap(ctx context.Context, result model.GameResult) {
	home := s.teams[result.HomeID]
	away := s.teams[result.AwayID]

	if s.generator == nil {
		s.recaps[result.GameID] = narrative.TemplateRecap(result, home, away)
		return
	}

	recap, err := s.generator.GenerateRecap(ctx, narrative.Facts(result, home, away))
	if err == nil {
		err = s.validator.Validate(ctx, recap, result)
	}
	if err != nil {
		metrics.RecordRecapRejected()
		metrics.RecordRecapFallback()
		s.logger.Warn(ctx, "recap rejected, serving template",
			logger.String("gameID", result.GameID),
			logger.Error(err),
		)
		s.recaps[result.GameID] = narrative.TemplateRecap(result, home, away)
		return
	}

	metrics.RecordRecapAccepted()
	s.recaps[result.GameID] = recap
}

// Recap returns the stored recap for a finished game.
func (s *Service) Recap(gameID string) (narrative.Recap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recaps[gameID]
	return r, ok
}

// Standings returns the current full standings order.
func (s *Service) Standings(ctx context.Context) ([]model.StandingsEntry, error) {
	s.mu.RLock()
	table := s.table
	s.mu.RUnlock()

	if table == nil {
		return nil, fmt.Errorf("%w: league not loaded", ErrSimulationState)
	}
	return table.Standings(ctx)
}

// RunPostseason seeds and plays the bracket once the regular season is done.
func (s *Service) RunPostseason(ctx context.Context) (model.BracketResult, error) {
	s.mu.Lock()
	if s.table == nil || s.schedule == nil {
		s.mu.Unlock()
		return model.BracketResult{}, fmt.Errorf("%w: season not set up", ErrSimulationState)
	}
	if s.currentWeek <= s.lastWeek {
		s.mu.Unlock()
		return model.BracketResult{}, fmt.Errorf("%w: regular season still in progress", ErrSimulationState)
	}
	table := s.table
	startWeek := s.lastWeek + 1
	s.mu.Unlock()

	result, err := s.bracketSim.Run(ctx, table, &postseasonResolver{svc: s}, startWeek)
	if err != nil {
		return model.BracketResult{}, fmt.Errorf("run postseason: %w", err)
	}

	s.logger.Info(ctx, "postseason complete",
		logger.Int("champion", result.ChampionID),
		logger.Int("rounds", len(result.Rounds)),
	)
	return result, nil
}

// CurrentWeek returns the next week to simulate.
func (s *Service) CurrentWeek() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentWeek
}

// RegularSeasonDone reports whether every scheduled week has been played.
func (s *Service) RegularSeasonDone() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule != nil && s.currentWeek > s.lastWeek
}

// gameSeed derives the per-game random stream seed from the master seed and
// the game's stable identity. A pairing occurs at most once per week, so the
// seed is unique per game, independent of worker scheduling, and identical
// across replays of the same season.
func (s *Service) gameSeed(game model.ScheduledGame) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d/%d/%d/%d", game.Season, game.Week, game.HomeID, game.AwayID)
	return s.rngSeed ^ int64(h.Sum64()) //nolint:gosec // deliberate wraparound
}

// side assembles one team's simulation input: availability-adjusted team
// rating plus the active roster with fatigue-degraded player ratings.
func (s *Service) side(teamID int) gamesim.TeamSide {
	s.mu.RLock()
	team := s.teams[teamID]
	rating := s.ratings[teamID]
	s.mu.RUnlock()

	rating -= s.injuries.AvailabilityPenalty(teamID)

	var roster []gamesim.RatedPlayer
	for _, part := range s.injuries.ActiveRoster(teamID) {
		roster = append(roster, gamesim.RatedPlayer{
			Player:    part.Player,
			Effective: s.injuries.EffectiveRating(part),
		})
	}

	return gamesim.TeamSide{Team: team, Rating: rating, Roster: roster}
}

// resolveGame runs one game with the given simulator and folds in the injury
// engine's per-game output.
func (s *Service) resolveGame(ctx context.Context, sim *gamesim.Simulator, rng *rand.Rand, game model.ScheduledGame) (model.GameResult, error) {
	home := s.side(game.HomeID)
	away := s.side(game.AwayID)

	result, err := sim.Simulate(ctx, rng, game, home, away)
	if err != nil {
		return model.GameResult{}, err
	}

	homeInjuries, homeFatigue := s.injuries.SimulateGame(ctx, rng, game.ID, game.Week, game.HomeID)
	awayInjuries, awayFatigue := s.injuries.SimulateGame(ctx, rng, game.ID, game.Week, game.AwayID)
	result.Injuries = append(homeInjuries, awayInjuries...)
	result.Fatigue = append(homeFatigue, awayFatigue...)

	return result, nil
}

// gameResolver adapts the Service to the worker pool's Resolver contract.
type gameResolver struct {
	svc *Service
}

func (r *gameResolver) Resolve(ctx context.Context, game model.ScheduledGame, rng *rand.Rand) (model.GameResult, error) {
	return r.svc.resolveGame(ctx, r.svc.regularSim, rng, game)
}

// weekSink lands finished results in the pending set and reports completion,
// success or failure, to the active week's collector.
type weekSink struct {
	svc *Service
}

func (ws *weekSink) Deliver(ctx context.Context, result model.GameResult) error {
	ws.svc.mu.Lock()
	ws.svc.pending[result.GameID] = result
	collector := ws.svc.collector
	ws.svc.mu.Unlock()

	if collector == nil {
		return fmt.Errorf("%w: no active week", ErrWeekIncomplete)
	}
	collector.complete(nil)
	return nil
}

// Reject accounts for a game whose resolution failed. Its guard entry is
// released so a retried week resolves the game again.
func (ws *weekSink) Reject(ctx context.Context, game model.ScheduledGame, err error) {
	ws.svc.guard.Unrecord(ctx, game.ID)

	ws.svc.mu.RLock()
	collector := ws.svc.collector
	ws.svc.mu.RUnlock()

	if collector != nil {
		collector.complete(fmt.Errorf("game %s: %w", game.ID, err))
	}
}

// postseasonResolver adapts the Service to the bracket's GameResolver
// contract: overtime on, sequential resolution, state carried between rounds.
type postseasonResolver struct {
	svc *Service
}

func (r *postseasonResolver) Resolve(ctx context.Context, round string, week int, home, away model.Team) (model.GameResult, error) {
	s := r.svc
	game := model.ScheduledGame{
		ID:     schedule.GameID(s.season, week, home.ID, away.ID),
		Season: s.season,
		Week:   week,
		HomeID: home.ID,
		AwayID: away.ID,
	}

	rng := rand.New(rand.NewSource(s.gameSeed(game))) //nolint:gosec // deterministic simulation stream

	result, err := s.resolveGame(ctx, s.playoffSim, rng, game)
	if err != nil {
		return model.GameResult{}, fmt.Errorf("postseason %s: %w", round, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveResult(ctx, result); err != nil {
		return model.GameResult{}, fmt.Errorf("postseason %s: %w", round, err)
	}
	s.updateRatings(result)
	s.storeRecap(ctx, result)

	return result, nil
}

func (r *postseasonResolver) AdvanceWeek(ctx context.Context) {
	r.svc.injuries.RestWeek(ctx)
}

// weekCollector accounts for one week's jobs finishing, successfully or not.
// Results themselves travel through the service's pending set; the collector
// only tracks completion so the week can wait without losing failures.
type weekCollector struct {
	mu   sync.Mutex
	seen int
	errs []error
	done chan struct{}
	want int
}

func newWeekCollector(want int) *weekCollector {
	c := &weekCollector{
		done: make(chan struct{}),
		want: want,
	}
	if want == 0 {
		close(c.done)
	}
	return c
}

func (c *weekCollector) complete(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seen == c.want {
		// Stray completion from a superseded attempt's in-flight game.
		return
	}
	if err != nil {
		c.errs = append(c.errs, err)
	}
	c.seen++
	if c.seen == c.want {
		close(c.done)
	}
}

func (c *weekCollector) wait(ctx context.Context) error {
	select {
	case <-c.done:
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.errs) > 0 {
			return fmt.Errorf("%w: %d of %d games failed: %w", ErrWeekIncomplete, len(c.errs), c.want, c.errs[0])
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrWeekIncomplete, ctx.Err())
	}
}
