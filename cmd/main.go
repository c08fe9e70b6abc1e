package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	app "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/logger"
)

// Sample league shape constants.
const (
	teamsPerDivision = 4
	rosterSize       = 8
	baseRating       = 1450.0
	topStandingsRows = 10
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Create and start the orchestrator with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithSeason(cfg.Season),
		app.WithWeeks(cfg.Weeks),
		app.WithSeed(cfg.RNGSeed),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithHomeFieldAdvantage(cfg.HomeFieldAdvantage),
		app.WithDriveBudget(cfg.DriveBudget),
		app.WithPlayoffSeeds(cfg.PlayoffSeeds),
		app.WithYardsTolerance(cfg.YardsTolerance),
		app.WithFatigueModel(cfg.FatiguePerSnap, cfg.FatigueRecovery),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start orchestrator: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	teams, players := sampleLeague()
	if err := svc.LoadLeague(ctx, teams, players); err != nil {
		loggerInstance.Error(ctx, "league load failed", logger.Error(err))
		return
	}

	if _, err := svc.GenerateSchedule(ctx); err != nil {
		loggerInstance.Error(ctx, "schedule generation failed", logger.Error(err))
		return
	}

	for !svc.RegularSeasonDone() {
		if ctx.Err() != nil {
			loggerInstance.Info(ctx, "season interrupted")
			return
		}
		if _, err := svc.SimulateWeek(ctx); err != nil {
			loggerInstance.Error(ctx, "week simulation failed", logger.Error(err))
			return
		}
	}

	entries, err := svc.Standings(ctx)
	if err != nil {
		loggerInstance.Error(ctx, "standings failed", logger.Error(err))
		return
	}
	for _, e := range entries[:min(topStandingsRows, len(entries))] {
		loggerInstance.Info(ctx, "final standings",
			logger.Int("rank", e.Rank),
			logger.String("team", e.Record.Team.Name),
			logger.Int("wins", e.Record.Wins),
			logger.Int("losses", e.Record.Losses),
			logger.Int("pointDiff", e.PointDiff),
		)
	}

	bracketResult, err := svc.RunPostseason(ctx)
	if err != nil {
		loggerInstance.Error(ctx, "postseason failed", logger.Error(err))
		return
	}

	champion := ""
	for _, t := range teams {
		if t.ID == bracketResult.ChampionID {
			champion = t.Name
		}
	}
	loggerInstance.Info(ctx, "season complete",
		logger.Int("season", cfg.Season),
		logger.String("champion", champion),
	)
}

// sampleLeague builds a 32-team league with deterministic ratings. Stands in
// for the external franchise database during demo runs.
func sampleLeague() ([]model.Team, map[int][]model.Player) {
	positions := []model.Position{
		model.PositionQB, model.PositionRB, model.PositionWR, model.PositionTE,
		model.PositionOL, model.PositionEDGE, model.PositionLB, model.PositionCB,
	}

	var teams []model.Team
	players := make(map[int][]model.Player)

	teamID := 0
	playerID := 0
	for _, conf := range []model.Conference{model.ConferenceAFC, model.ConferenceNFC} {
		for _, div := range model.DivisionOrder {
			for n := 0; n < teamsPerDivision; n++ {
				teamID++
				teams = append(teams, model.Team{
					ID:         teamID,
					Name:       fmt.Sprintf("%s %s %d", conf, div, n+1),
					Abbr:       fmt.Sprintf("T%02d", teamID),
					Rating:     baseRating + float64((teamID*41)%120),
					Conference: conf,
					Division:   div,
				})

				roster := make([]model.Player, 0, rosterSize)
				for i := 0; i < rosterSize; i++ {
					playerID++
					roster = append(roster, model.Player{
						ID:       playerID,
						TeamID:   teamID,
						Name:     fmt.Sprintf("Player %d", playerID),
						Position: positions[i%len(positions)],
						Rating:   60 + float64((playerID*17)%35),
						Snaps:    55,
					})
				}
				players[teamID] = roster
			}
		}
	}
	return teams, players
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
