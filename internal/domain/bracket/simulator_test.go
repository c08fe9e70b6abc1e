package bracket

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/standings"
)

// scriptedResolver decides winners through a pluggable rule and records the
// pairings it was asked to play.
type scriptedResolver struct {
	winner   func(home, away model.Team) int
	games    int
	pairings []string
	advanced int
}

func (r *scriptedResolver) Resolve(_ context.Context, round string, week int, home, away model.Team) (model.GameResult, error) {
	r.games++
	r.pairings = append(r.pairings, fmt.Sprintf("%s:%d-%d", round, home.ID, away.ID))

	homeScore, awayScore := 23, 16
	if winner := r.winner(home, away); winner == away.ID {
		homeScore, awayScore = 16, 23
	} else if winner == 0 {
		awayScore = homeScore
	}

	return model.GameResult{
		ID:        fmt.Sprintf("po-%d", r.games),
		GameID:    fmt.Sprintf("po-%d", r.games),
		Week:      week,
		HomeID:    home.ID,
		AwayID:    away.ID,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}, nil
}

func (r *scriptedResolver) AdvanceWeek(_ context.Context) {
	r.advanced++
}

func homeWins(home, _ model.Team) int { return home.ID }

// conferenceTable builds a standings table where every team has played every
// other and the lower id always won, so ranking is strictly by id.
func conferenceTable(teams []model.Team) *standings.Table {
	table := standings.NewTable(teams)
	ctx := context.Background()
	game := 0
	for i := range teams {
		for j := i + 1; j < len(teams); j++ {
			game++
			result := model.GameResult{
				ID:        fmt.Sprintf("rs-%d", game),
				GameID:    fmt.Sprintf("rs-%d", game),
				HomeID:    teams[i].ID,
				AwayID:    teams[j].ID,
				HomeScore: 27,
				AwayScore: 13,
			}
			if err := table.Apply(ctx, result); err != nil {
				panic(err)
			}
		}
	}
	return table
}

func twoDivisionConference(conf model.Conference, firstID int) []model.Team {
	var teams []model.Team
	id := firstID
	for _, div := range []model.Division{model.DivisionEast, model.DivisionWest} {
		for slot := 0; slot < 4; slot++ {
			teams = append(teams, model.Team{
				ID:         id,
				Name:       fmt.Sprintf("%s %s %d", conf, div, slot+1),
				Conference: conf,
				Division:   div,
			})
			id++
		}
	}
	return teams
}

func TestSeeding(t *testing.T) {
	Convey("Given a conference where the lower id always won", t, func() {
		teams := twoDivisionConference(model.ConferenceAFC, 1)
		table := conferenceTable(teams)
		sim := NewSimulator(WithSeedsPerConference(4))

		seeded, err := sim.Seed(context.Background(), table)
		So(err, ShouldBeNil)
		seeds := seeded[model.ConferenceAFC]

		Convey("Division winners hold the top seeds", func() {
			So(len(seeds), ShouldEqual, 4)
			So(seeds[0].Team.ID, ShouldEqual, 1)
			So(seeds[0].DivisionWinner, ShouldBeTrue)
			So(seeds[1].Team.ID, ShouldEqual, 5)
			So(seeds[1].DivisionWinner, ShouldBeTrue)
		})

		Convey("Wildcards fill the remaining seeds by record", func() {
			So(seeds[2].Team.ID, ShouldEqual, 2)
			So(seeds[2].DivisionWinner, ShouldBeFalse)
			So(seeds[3].Team.ID, ShouldEqual, 3)
			So(seeds[3].DivisionWinner, ShouldBeFalse)
		})

		Convey("Seed numbers run 1 through the field size", func() {
			for i, seed := range seeds {
				So(seed.Number, ShouldEqual, i+1)
			}
		})
	})

	Convey("Given fewer than two teams", t, func() {
		table := standings.NewTable([]model.Team{{ID: 1, Name: "Lone"}})
		_, err := NewSimulator().Seed(context.Background(), table)
		So(errors.Is(err, ErrInsufficientTeams), ShouldBeTrue)
	})
}

func TestFullBracket(t *testing.T) {
	Convey("Given two seeded conferences and a home-wins resolver", t, func() {
		teams := append(
			twoDivisionConference(model.ConferenceAFC, 1),
			twoDivisionConference(model.ConferenceNFC, 9)...,
		)
		table := conferenceTable(teams)
		sim := NewSimulator(WithSeedsPerConference(4))
		resolver := &scriptedResolver{winner: homeWins}

		result, err := sim.Run(context.Background(), table, resolver, 19)
		So(err, ShouldBeNil)

		Convey("The top overall seed takes the title", func() {
			So(result.ChampionID, ShouldEqual, 1)
		})

		Convey("Rounds progress divisional, conference, championship", func() {
			So(len(result.Rounds), ShouldEqual, 3)
			So(result.Rounds[0].Name, ShouldEqual, "Divisional")
			So(result.Rounds[1].Name, ShouldEqual, "Conference Championship")
			So(result.Rounds[2].Name, ShouldEqual, "Championship")
			So(len(result.Rounds[0].Games), ShouldEqual, 4)
			So(len(result.Rounds[1].Games), ShouldEqual, 2)
			So(len(result.Rounds[2].Games), ShouldEqual, 1)
		})

		Convey("Weeks advance between rounds starting from the handoff", func() {
			So(resolver.advanced, ShouldEqual, 2)
			So(result.Rounds[0].Games[0].Week, ShouldEqual, 19)
			So(result.Rounds[2].Games[0].Week, ShouldEqual, 21)
		})

		Convey("Every slot names its round, seed, and elimination", func() {
			for _, round := range result.Rounds {
				So(len(round.Slots), ShouldEqual, 2*len(round.Games))
				for _, slot := range round.Slots {
					So(slot.Round, ShouldEqual, round.Name)
					So(slot.Seed, ShouldBeGreaterThan, 0)
				}
			}
		})
	})
}

func TestReseedingAndByes(t *testing.T) {
	Convey("Given a five-team pool with scripted upsets", t, func() {
		var teams []model.Team
		for id := 1; id <= 5; id++ {
			teams = append(teams, model.Team{ID: id, Name: fmt.Sprintf("Club %d", id)})
		}
		table := conferenceTable(teams)

		// Seed 5 pulls two upsets; everything else goes chalk.
		resolver := &scriptedResolver{winner: func(home, away model.Team) int {
			switch fmt.Sprintf("%d-%d", home.ID, away.ID) {
			case "2-5", "3-5":
				return away.ID
			default:
				return home.ID
			}
		}}

		sim := NewSimulator(WithSeedsPerConference(5))
		result, err := sim.Run(context.Background(), table, resolver, 19)
		So(err, ShouldBeNil)

		Convey("The top seed sits out the opening round", func() {
			So(resolver.pairings[0], ShouldEqual, "Wild Card:2-5")
			So(resolver.pairings[1], ShouldEqual, "Wild Card:3-4")
		})

		Convey("Survivors are reseeded best against worst", func() {
			// 5 and 3 advanced; 1 rests again while they meet.
			So(resolver.pairings[2], ShouldEqual, "Divisional:3-5")
			So(resolver.pairings[3], ShouldEqual, "Conference Championship:1-5")
		})

		Convey("Chalk from there hands the pool to the top seed", func() {
			So(result.ChampionID, ShouldEqual, 1)
		})
	})
}

func TestUnresolvedGame(t *testing.T) {
	Convey("Given a resolver that returns a tie", t, func() {
		teams := twoDivisionConference(model.ConferenceAFC, 1)
		table := conferenceTable(teams)
		resolver := &scriptedResolver{winner: func(_, _ model.Team) int { return 0 }}

		_, err := NewSimulator(WithSeedsPerConference(2)).Run(context.Background(), table, resolver, 19)
		So(errors.Is(err, ErrUnresolvedGame), ShouldBeTrue)
	})
}
