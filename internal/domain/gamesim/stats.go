package gamesim

import (
	"fmt"
	"math/rand"

	"github.com/okian/gridiron/internal/domain/model"
)

// Stat apportioning constants.
const (
	passYardShare    = 0.6 // share of team yardage moved through the air
	passTDShare      = 0.6
	maxHighlights    = 6
	highlightMinGain = 50
)

// apportionStats splits the side's team totals into per-player stat lines
// weighted by squared effective-rating share, so star players accumulate
// disproportionate production.
func apportionStats(rng *rand.Rand, side TeamSide, drives []model.Drive, label string) []model.StatLine {
	totalYards, touchdowns := 0, 0
	for _, d := range drives {
		if d.Offense != label {
			continue
		}
		totalYards += d.Yards
		if d.Result == model.DriveTD {
			touchdowns++
		}
	}

	passYards := int(float64(totalYards) * passYardShare)
	rushYards := totalYards - passYards
	passTDs := int(float64(touchdowns)*passTDShare + 0.5)
	rushTDs := touchdowns - passTDs

	var qbs, rbs, receivers, rushersOfPassers []RatedPlayer
	for _, p := range side.Roster {
		switch p.Player.Position {
		case model.PositionQB:
			qbs = append(qbs, p)
		case model.PositionRB:
			rbs = append(rbs, p)
		case model.PositionWR, model.PositionTE:
			receivers = append(receivers, p)
		case model.PositionEDGE, model.PositionDL, model.PositionLB:
			rushersOfPassers = append(rushersOfPassers, p)
		}
	}

	var lines []model.StatLine

	for i, share := range ratingShares(qbs) {
		p := qbs[i]
		yards := int(float64(passYards) * share)
		tds := 0
		if i == 0 {
			tds = passTDs
		}
		attempts := 28 + rng.Intn(13)
		completions := attempts * (55 + rng.Intn(20)) / 100
		interceptions := rng.Intn(3)
		lines = append(lines, model.StatLine{
			PlayerID:      p.Player.ID,
			Name:          p.Player.Name,
			Position:      p.Player.Position,
			PassYards:     yards,
			Touchdowns:    tds,
			Interceptions: interceptions,
			Summary:       fmt.Sprintf("%d/%d for %d yds and %d TDs", completions, attempts, yards, tds),
		})
	}

	for i, share := range ratingShares(rbs) {
		p := rbs[i]
		yards := int(float64(rushYards) * share)
		tds := 0
		if i == 0 {
			tds = rushTDs
		}
		carries := 12 + rng.Intn(13)
		summary := fmt.Sprintf("%d carries for %d yds", carries, yards)
		if tds > 0 {
			summary = fmt.Sprintf("%s and %d TDs", summary, tds)
		}
		lines = append(lines, model.StatLine{
			PlayerID:   p.Player.ID,
			Name:       p.Player.Name,
			Position:   p.Player.Position,
			RushYards:  yards,
			Touchdowns: tds,
			Summary:    summary,
		})
	}

	for i, share := range ratingShares(receivers) {
		p := receivers[i]
		yards := int(float64(passYards) * share)
		tds := 0
		if i == 0 {
			tds = passTDs
		}
		catches := 4 + rng.Intn(7)
		lines = append(lines, model.StatLine{
			PlayerID:   p.Player.ID,
			Name:       p.Player.Name,
			Position:   p.Player.Position,
			RecvYards:  yards,
			Touchdowns: tds,
			Summary:    fmt.Sprintf("%d catches for %d yds", catches, yards),
		})
	}

	if len(rushersOfPassers) > 0 {
		p := topRated(rushersOfPassers)
		sacks := rng.Intn(4)
		if sacks > 0 {
			lines = append(lines, model.StatLine{
				PlayerID: p.Player.ID,
				Name:     p.Player.Name,
				Position: p.Player.Position,
				Sacks:    sacks,
				Summary:  fmt.Sprintf("%d sacks", sacks),
			})
		}
	}

	return lines
}

// ratingShares returns each player's squared-rating share, ordered from the
// strongest player down so index 0 is always the group's star.
func ratingShares(players []RatedPlayer) []float64 {
	if len(players) == 0 {
		return nil
	}
	sortByEffective(players)

	total := 0.0
	weights := make([]float64, len(players))
	for i, p := range players {
		w := p.Effective * p.Effective
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		total += w
	}
	for i := range weights {
		weights[i] /= total
	}
	return weights
}

func sortByEffective(players []RatedPlayer) {
	for i := 1; i < len(players); i++ {
		for j := i; j > 0 && players[j].Effective > players[j-1].Effective; j-- {
			players[j], players[j-1] = players[j-1], players[j]
		}
	}
}

func topRated(players []RatedPlayer) RatedPlayer {
	best := players[0]
	for _, p := range players[1:] {
		if p.Effective > best.Effective {
			best = p
		}
	}
	return best
}

// extractHighlights pulls memorable moments from the drive log: scores,
// turnovers, and chunk gains.
func extractHighlights(drives []model.Drive) []model.Highlight {
	var highlights []model.Highlight
	for i, d := range drives {
		if d.Result != model.DriveTD && d.Result != model.DriveTurnover && d.Yards < highlightMinGain {
			continue
		}
		descriptor := "chunk play"
		switch d.Result {
		case model.DriveTD:
			descriptor = "touchdown"
		case model.DriveTurnover:
			descriptor = "turnover"
		}
		highlights = append(highlights, model.Highlight{
			Offense:    d.Offense,
			Result:     d.Result,
			Descriptor: descriptor,
			Yards:      d.Yards,
			DriveIndex: i,
		})
		if len(highlights) >= maxHighlights {
			break
		}
	}
	return highlights
}
