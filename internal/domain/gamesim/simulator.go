package gamesim

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/metrics"
)

// Drive model constants.
const (
	defaultDriveBudget = 24
	driveYardsMean     = 32.0
	driveYardsStdDev   = 18.0
	driveMinutesMean   = 2.8
	driveMinutesStdDev = 0.9
	maxEdgeShift       = 0.12
	minDriveWeight     = 0.02
)

// RatedPlayer couples a roster member with the fatigue-adjusted rating the
// injury engine computed for this game.
type RatedPlayer struct {
	Player    model.Player
	Effective float64
}

// TeamSide is one side of a matchup: the team, its availability-adjusted
// strength, and the active roster with effective ratings.
type TeamSide struct {
	Team   model.Team
	Rating float64
	Roster []RatedPlayer
}

// Simulator resolves a game drive by drive. The final score is the sum of
// drive outcomes; there is no post-hoc score patching.
type Simulator struct {
	homeFieldAdvantage float64
	driveBudget        int
	overtime           bool
}

// NewSimulator creates a game simulator with configuration options.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		homeFieldAdvantage: defaultHomeFieldAdvantage,
		driveBudget:        defaultDriveBudget,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Simulate resolves one game. Randomness comes entirely from rng, so a
// per-game stream keyed by (season, week, game) reproduces the same result
// regardless of execution order.
func (s *Simulator) Simulate(ctx context.Context, rng *rand.Rand, game model.ScheduledGame, home, away TeamSide) (model.GameResult, error) {
	if err := ctx.Err(); err != nil {
		return model.GameResult{}, fmt.Errorf("game simulation cancelled: %w", err)
	}

	prob := WinProb(home.Rating, away.Rating, s.homeFieldAdvantage)

	var drives []model.Drive
	homeScore, awayScore := 0, 0
	for i := 0; i < s.driveBudget; i++ {
		offenseHome := i%2 == 0
		drive := s.playDrive(rng, offenseHome, home.Rating, away.Rating)
		drives = append(drives, drive)
		if offenseHome {
			homeScore += drive.Result.Points()
		} else {
			awayScore += drive.Result.Points()
		}
	}

	overtime := false
	if s.overtime && homeScore == awayScore {
		overtime = true
		for i := 0; homeScore == awayScore; i++ {
			offenseHome := i%2 == 0
			drive := s.playDrive(rng, offenseHome, home.Rating, away.Rating)
			drives = append(drives, drive)
			if offenseHome {
				homeScore += drive.Result.Points()
			} else {
				awayScore += drive.Result.Points()
			}
			metrics.RecordOvertimePeriod()
		}
	}

	result := model.GameResult{
		ID:         uuid.NewString(),
		GameID:     game.ID,
		Season:     game.Season,
		Week:       game.Week,
		HomeID:     home.Team.ID,
		AwayID:     away.Team.ID,
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		WinProb:    prob,
		Overtime:   overtime,
		Headline:   headline(homeScore, awayScore),
		Highlights: extractHighlights(drives),
		Drives:     drives,
		HomeStats:  apportionStats(rng, home, drives, "home"),
		AwayStats:  apportionStats(rng, away, drives, "away"),
	}

	metrics.RecordDrives(len(drives))
	metrics.RecordCombinedPoints(homeScore + awayScore)

	return result, nil
}

// playDrive samples one drive conditioned on the offense/defense rating gap.
func (s *Simulator) playDrive(rng *rand.Rand, offenseHome bool, homeRating, awayRating float64) model.Drive {
	offense, defense := awayRating, homeRating
	side := "away"
	if offenseHome {
		offense, defense = homeRating+s.homeFieldAdvantage, awayRating
		side = "home"
	}

	weights := driveWeights(offense - defense)
	result := sampleDrive(rng, weights)

	yards := int(driveYardsMean + rng.NormFloat64()*driveYardsStdDev)
	if yards < 0 {
		yards = 0
	}
	minutes := driveMinutesMean + rng.NormFloat64()*driveMinutesStdDev
	if minutes < 1.0 {
		minutes = 1.0
	}

	return model.Drive{
		Offense: side,
		Result:  result,
		Yards:   yards,
		Minutes: minutes,
	}
}

// driveWeights shifts the base outcome distribution by the rating edge:
// stronger offenses convert more drives into scores.
func driveWeights(edge float64) [4]float64 {
	shift := edge / eloDivisor
	if shift > maxEdgeShift {
		shift = maxEdgeShift
	}
	if shift < -maxEdgeShift {
		shift = -maxEdgeShift
	}

	// Order: TD, FG, Punt, Turnover.
	weights := [4]float64{
		0.25 + shift,
		0.20 + shift/2,
		0.40 - shift,
		0.15 - shift/2,
	}
	total := 0.0
	for i := range weights {
		if weights[i] < minDriveWeight {
			weights[i] = minDriveWeight
		}
		total += weights[i]
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

func sampleDrive(rng *rand.Rand, weights [4]float64) model.DriveResult {
	outcomes := [4]model.DriveResult{model.DriveTD, model.DriveFG, model.DrivePunt, model.DriveTurnover}
	roll := rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if roll <= cumulative {
			return outcomes[i]
		}
	}
	return model.DriveTurnover
}

func headline(homeScore, awayScore int) string {
	margin := homeScore - awayScore
	if margin < 0 {
		margin = -margin
	}
	switch {
	case margin <= 3:
		return "Nail-biter comes down to the final drive"
	case margin >= 17:
		return "Statement win in all three phases"
	default:
		return "Solid all-around performance"
	}
}
