package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/domain/model"
)

func leagueTeams() []model.Team {
	var teams []model.Team
	id := 1
	for _, conf := range []model.Conference{model.ConferenceAFC, model.ConferenceNFC} {
		for _, div := range model.DivisionOrder {
			for slot := 0; slot < teamsPerDivision; slot++ {
				teams = append(teams, model.Team{
					ID:         id,
					Name:       fmt.Sprintf("%s %s %d", conf, div, slot+1),
					Conference: conf,
					Division:   div,
					Rating:     1500 - float64(id),
				})
				id++
			}
		}
	}
	return teams
}

func TestLeagueSchedule(t *testing.T) {
	Convey("Given a full 32-team league", t, func() {
		teams := leagueTeams()
		gen := NewGenerator(WithSeed(11))

		games, err := gen.Generate(context.Background(), teams, 2026)
		So(err, ShouldBeNil)

		Convey("Every team draws exactly 17 games", func() {
			counts := make(map[int]int)
			for _, g := range games {
				counts[g.HomeID]++
				counts[g.AwayID]++
			}
			So(len(games), ShouldEqual, len(teams)*targetGamesPerTeam/2)
			for _, team := range teams {
				So(counts[team.ID], ShouldEqual, targetGamesPerTeam)
			}
		})

		Convey("No team plays twice in the same week", func() {
			busy := make(map[int]map[int]bool)
			for _, g := range games {
				if busy[g.Week] == nil {
					busy[g.Week] = make(map[int]bool)
				}
				So(busy[g.Week][g.HomeID], ShouldBeFalse)
				So(busy[g.Week][g.AwayID], ShouldBeFalse)
				busy[g.Week][g.HomeID] = true
				busy[g.Week][g.AwayID] = true
			}
		})

		Convey("Division rivals meet home and away", func() {
			type pair struct{ home, away int }
			met := make(map[pair]int)
			for _, g := range games {
				if g.Kind == model.MatchupDivision {
					met[pair{g.HomeID, g.AwayID}]++
				}
			}
			for _, team := range teams {
				for _, rival := range teams {
					if team.ID == rival.ID || team.Division != rival.Division || team.Conference != rival.Conference {
						continue
					}
					So(met[pair{team.ID, rival.ID}], ShouldEqual, 1)
				}
			}
		})

		Convey("The season packs into the week budget with one bye per team", func() {
			maxWeek := 0
			weeksPlayed := make(map[int]map[int]bool)
			for _, g := range games {
				if g.Week > maxWeek {
					maxWeek = g.Week
				}
				for _, id := range []int{g.HomeID, g.AwayID} {
					if weeksPlayed[id] == nil {
						weeksPlayed[id] = make(map[int]bool)
					}
					weeksPlayed[id][g.Week] = true
				}
			}
			So(maxWeek, ShouldBeLessThanOrEqualTo, defaultWeeks)
			for _, team := range teams {
				So(len(weeksPlayed[team.ID]), ShouldEqual, targetGamesPerTeam)
			}
		})

		Convey("Games carry season, week, and matchup metadata", func() {
			for _, g := range games {
				So(g.ID, ShouldNotBeEmpty)
				So(g.Season, ShouldEqual, 2026)
				So(g.Week, ShouldBeGreaterThan, 0)
				So(g.Kind, ShouldBeIn, []model.MatchupKind{model.MatchupDivision, model.MatchupConference, model.MatchupCrossConference})
			}
		})
	})
}

func TestScheduleDeterminism(t *testing.T) {
	Convey("Given two generators with the same seed", t, func() {
		teams := leagueTeams()
		first, err := NewGenerator(WithSeed(42)).Generate(context.Background(), teams, 2026)
		So(err, ShouldBeNil)
		second, err := NewGenerator(WithSeed(42)).Generate(context.Background(), teams, 2026)
		So(err, ShouldBeNil)

		Convey("Week placement is identical game for game", func() {
			So(len(second), ShouldEqual, len(first))
			for i := range first {
				So(second[i].ID, ShouldEqual, first[i].ID)
				So(second[i].Week, ShouldEqual, first[i].Week)
				So(second[i].HomeID, ShouldEqual, first[i].HomeID)
				So(second[i].AwayID, ShouldEqual, first[i].AwayID)
			}
		})
	})
}

func TestRoundRobinFallback(t *testing.T) {
	Convey("Given teams without conference metadata", t, func() {
		var teams []model.Team
		for id := 1; id <= 5; id++ {
			teams = append(teams, model.Team{ID: id, Name: fmt.Sprintf("Club %d", id)})
		}

		Convey("A single round-robin meets every pair once", func() {
			games, err := NewGenerator().Generate(context.Background(), teams, 2026)
			So(err, ShouldBeNil)
			So(len(games), ShouldEqual, len(teams)*(len(teams)-1)/2)

			met := make(map[[2]int]int)
			for _, g := range games {
				lo, hi := g.HomeID, g.AwayID
				if lo > hi {
					lo, hi = hi, lo
				}
				met[[2]int{lo, hi}]++
			}
			for _, count := range met {
				So(count, ShouldEqual, 1)
			}
		})

		Convey("The double option replays every pairing with venues swapped", func() {
			games, err := NewGenerator(WithDoubleRoundRobin(true)).Generate(context.Background(), teams, 2026)
			So(err, ShouldBeNil)
			So(len(games), ShouldEqual, len(teams)*(len(teams)-1))

			hosted := make(map[[2]int]int)
			for _, g := range games {
				hosted[[2]int{g.HomeID, g.AwayID}]++
			}
			for _, count := range hosted {
				So(count, ShouldEqual, 1)
			}
		})

		Convey("An odd team count leaves one club idle per round", func() {
			games, err := NewGenerator().Generate(context.Background(), teams, 2026)
			So(err, ShouldBeNil)
			perWeek := make(map[int]int)
			for _, g := range games {
				perWeek[g.Week]++
			}
			for _, count := range perWeek {
				So(count, ShouldEqual, len(teams)/2)
			}
		})
	})
}

func TestScheduleValidation(t *testing.T) {
	Convey("Given invalid scheduling input", t, func() {
		Convey("Fewer than two teams is rejected", func() {
			_, err := NewGenerator().Generate(context.Background(), []model.Team{{ID: 1}}, 2026)
			So(errors.Is(err, ErrScheduleConstraint), ShouldBeTrue)
		})

		Convey("Duplicate team ids are rejected", func() {
			_, err := NewGenerator().Generate(context.Background(), []model.Team{{ID: 1}, {ID: 1}}, 2026)
			So(errors.Is(err, ErrScheduleConstraint), ShouldBeTrue)
		})

		Convey("A lopsided division layout is rejected", func() {
			teams := leagueTeams()
			teams[0].Division = model.DivisionWest
			_, err := NewGenerator().Generate(context.Background(), teams, 2026)
			So(errors.Is(err, ErrScheduleConstraint), ShouldBeTrue)
		})

		Convey("A cancelled context stops generation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := NewGenerator().Generate(ctx, leagueTeams(), 2026)
			So(err, ShouldNotBeNil)
		})
	})
}
