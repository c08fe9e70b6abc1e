// Package narrative validates externally generated recaps against the
// authoritative game facts and builds the deterministic fallback recap.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/gridiron/internal/domain/model"
)

// Default validation constants.
const (
	defaultYardsTolerance = 15
)

// Scoreboard is the score block a recap must reproduce exactly.
type Scoreboard struct {
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// PlayerMention names a player referenced by the recap, optionally with an
// asserted yardage figure.
type PlayerMention struct {
	PlayerID   int
	Name       string
	Yards      int
	YardsKnown bool
}

// Recap is the fixed narrative payload schema. Every field is validated
// against the GameResult before the text is accepted.
type Recap struct {
	Headline   string
	Summary    string
	HomeStance string
	AwayStance string
	Scoreboard Scoreboard
	Players    []PlayerMention
	Fallback   bool // true when assembled from the template, not generated
}

// FactPayload is the structured fact bundle sent to the narrative service.
type FactPayload struct {
	Season     int
	Week       int
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	Headline   string
	KeyPlayers []model.StatLine
	Highlights []model.Highlight
}

// Generator is the external narrative service boundary. Implementations may
// call an LLM; the engine only sees the structured recap.
type Generator interface {
	GenerateRecap(ctx context.Context, facts FactPayload) (Recap, error)
}

// Facts assembles the narrative request payload from a finished game.
func Facts(result model.GameResult, home, away model.Team) FactPayload {
	keyPlayers := append(append([]model.StatLine(nil), result.HomeStats...), result.AwayStats...)
	return FactPayload{
		Season:     result.Season,
		Week:       result.Week,
		HomeTeam:   home.Name,
		AwayTeam:   away.Name,
		HomeScore:  result.HomeScore,
		AwayScore:  result.AwayScore,
		Headline:   result.Headline,
		KeyPlayers: keyPlayers,
		Highlights: result.Highlights,
	}
}

// Validator checks recaps field by field against a GameResult.
type Validator struct {
	yardsTolerance int
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithYardsTolerance sets the band within which an asserted yardage figure
// is considered consistent with the recorded stat line.
func WithYardsTolerance(tolerance int) Option {
	return func(v *Validator) {
		if tolerance >= 0 {
			v.yardsTolerance = tolerance
		}
	}
}

// NewValidator creates a validator with configuration options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		yardsTolerance: defaultYardsTolerance,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate accepts a recap only when its referenced score matches exactly,
// every named player appears in the game's stat lines, and no asserted
// statistic falls outside the tolerance band.
func (v *Validator) Validate(ctx context.Context, recap Recap, result model.GameResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("validation cancelled: %w", err)
	}

	if recap.Scoreboard.HomeScore != result.HomeScore || recap.Scoreboard.AwayScore != result.AwayScore {
		return fmt.Errorf("%w: recap score %d-%d, actual %d-%d",
			ErrNarrativeGrounding,
			recap.Scoreboard.HomeScore, recap.Scoreboard.AwayScore,
			result.HomeScore, result.AwayScore)
	}

	for _, mention := range recap.Players {
		line, ok := v.findStatLine(result, mention)
		if !ok {
			return fmt.Errorf("%w: player %q not in stat lines", ErrNarrativeGrounding, mention.Name)
		}
		if !mention.YardsKnown {
			continue
		}
		diff := mention.Yards - line.Yards()
		if diff < 0 {
			diff = -diff
		}
		if diff > v.yardsTolerance {
			return fmt.Errorf("%w: %s credited %d yds, recorded %d",
				ErrNarrativeGrounding, mention.Name, mention.Yards, line.Yards())
		}
	}

	return nil
}

func (v *Validator) findStatLine(result model.GameResult, mention PlayerMention) (model.StatLine, bool) {
	if mention.PlayerID > 0 {
		return result.StatLineFor(mention.PlayerID)
	}
	name := strings.ToLower(strings.TrimSpace(mention.Name))
	for _, lines := range [][]model.StatLine{result.HomeStats, result.AwayStats} {
		for _, line := range lines {
			if strings.ToLower(line.Name) == name {
				return line, true
			}
		}
	}
	return model.StatLine{}, false
}

// TemplateRecap assembles the deterministic fallback recap directly from the
// game facts. It always validates by construction.
func TemplateRecap(result model.GameResult, home, away model.Team) Recap {
	winner, loser := home, away
	winScore, loseScore := result.HomeScore, result.AwayScore
	if result.AwayScore > result.HomeScore {
		winner, loser = away, home
		winScore, loseScore = result.AwayScore, result.HomeScore
	}

	var summary string
	if result.HomeScore == result.AwayScore {
		summary = fmt.Sprintf("%s and %s played to a %d-%d tie in week %d.",
			home.Name, away.Name, result.HomeScore, result.AwayScore, result.Week)
	} else {
		summary = fmt.Sprintf("%s defeated %s %d-%d in week %d.",
			winner.Name, loser.Name, winScore, loseScore, result.Week)
	}

	var players []PlayerMention
	for _, lines := range [][]model.StatLine{result.HomeStats, result.AwayStats} {
		for _, line := range lines {
			players = append(players, PlayerMention{
				PlayerID:   line.PlayerID,
				Name:       line.Name,
				Yards:      line.Yards(),
				YardsKnown: true,
			})
			summary += fmt.Sprintf(" %s: %s.", line.Name, line.Summary)
			break // one representative line per side keeps the template short
		}
	}

	return Recap{
		Headline: result.Headline,
		Summary:  summary,
		HomeStance: fmt.Sprintf("%s finished with %d points on %d drives.",
			home.Name, result.HomeScore, countDrives(result.Drives, "home")),
		AwayStance: fmt.Sprintf("%s finished with %d points on %d drives.",
			away.Name, result.AwayScore, countDrives(result.Drives, "away")),
		Scoreboard: Scoreboard{
			HomeTeam:  home.Name,
			AwayTeam:  away.Name,
			HomeScore: result.HomeScore,
			AwayScore: result.AwayScore,
		},
		Players:  players,
		Fallback: true,
	}
}

func countDrives(drives []model.Drive, side string) int {
	n := 0
	for _, d := range drives {
		if d.Offense == side {
			n++
		}
	}
	return n
}
