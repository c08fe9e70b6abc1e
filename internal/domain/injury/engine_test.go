package injury

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/domain/model"
)

func testRoster(teamID, size int) []model.Player {
	positions := []model.Position{
		model.PositionQB, model.PositionRB, model.PositionWR,
		model.PositionOL, model.PositionLB, model.PositionCB,
	}
	players := make([]model.Player, 0, size)
	for i := 0; i < size; i++ {
		players = append(players, model.Player{
			ID:       teamID*100 + i,
			TeamID:   teamID,
			Name:     fmt.Sprintf("Player %d-%d", teamID, i),
			Position: positions[i%len(positions)],
			Rating:   80,
			Snaps:    60,
		})
	}
	return players
}

func TestFatigueAccrual(t *testing.T) {
	Convey("Given a fresh roster", t, func() {
		ctx := context.Background()
		engine := NewEngine(WithFatiguePerSnap(0.3), WithFatigueRecovery(10))
		engine.LoadRoster(1, testRoster(1, 6), nil, nil)
		rng := rand.New(rand.NewSource(1))

		Convey("A game raises every active player's fatigue by snaps times rate", func() {
			_, deltas := engine.SimulateGame(ctx, rng, "g1", 1, 1)
			So(len(deltas), ShouldEqual, 6)
			for _, d := range deltas {
				So(d.Delta, ShouldEqual, 18.0)
				So(engine.Fatigue(d.PlayerID), ShouldEqual, 18.0)
			}
		})

		Convey("A rest week sheds the configured recovery", func() {
			engine.SimulateGame(ctx, rng, "g1", 1, 1)
			engine.RestWeek(ctx)
			for _, p := range testRoster(1, 6) {
				So(engine.Fatigue(p.ID), ShouldEqual, 8.0)
			}
		})

		Convey("Fatigue never goes below zero or above the cap", func() {
			for week := 1; week <= 12; week++ {
				engine.SimulateGame(ctx, rng, fmt.Sprintf("g%d", week), week, 1)
			}
			for _, st := range engine.FatigueStates(12) {
				So(st.Fatigue, ShouldBeLessThanOrEqualTo, 100.0)
			}

			for i := 0; i < 20; i++ {
				engine.RestWeek(ctx)
			}
			for _, st := range engine.FatigueStates(12) {
				So(st.Fatigue, ShouldBeGreaterThanOrEqualTo, 0.0)
			}
		})
	})
}

func TestInjuryDraws(t *testing.T) {
	ctx := context.Background()

	Convey("Given a forced per-snap incidence of one", t, func() {
		rates := make(map[model.Position]float64)
		for pos := range defaultPositionRates {
			rates[pos] = 1.0
		}
		engine := NewEngine(WithPositionRates(rates))
		engine.LoadRoster(1, testRoster(1, 4), nil, nil)

		injuries, _ := engine.SimulateGame(ctx, rand.New(rand.NewSource(3)), "g1", 5, 1)

		Convey("Every active player goes down with a plausible record", func() {
			So(len(injuries), ShouldEqual, 4)
			for _, rec := range injuries {
				So(rec.TeamID, ShouldEqual, 1)
				So(rec.GameID, ShouldEqual, "g1")
				So(rec.OccurredWeek, ShouldEqual, 5)
				So(rec.WeeksOut, ShouldBeGreaterThan, 0)
				So(rec.RecoveryWeek, ShouldEqual, 5+rec.WeeksOut)
				So(rec.Description, ShouldNotBeEmpty)
				So(rec.Severity, ShouldBeIn, []model.Severity{
					model.SeverityMinor, model.SeverityModerate,
					model.SeveritySevere, model.SeveritySeasonEnding,
				})
			}
		})

		Convey("Injured players sit out the following game", func() {
			So(engine.ActiveRoster(1), ShouldBeEmpty)
			followUp, deltas := engine.SimulateGame(ctx, rand.New(rand.NewSource(4)), "g2", 6, 1)
			So(followUp, ShouldBeEmpty)
			So(deltas, ShouldBeEmpty)
		})

		Convey("Recovery weeks tick down until the player returns", func() {
			shortest := injuries[0].WeeksOut
			for _, rec := range injuries {
				if rec.WeeksOut < shortest {
					shortest = rec.WeeksOut
				}
			}
			for i := 0; i < shortest; i++ {
				So(len(engine.ActiveRoster(1)), ShouldBeLessThan, 4)
				engine.RestWeek(ctx)
			}
			So(engine.ActiveRoster(1), ShouldNotBeEmpty)
		})
	})

	Convey("Given a zeroed incidence the roster stays healthy", t, func() {
		engine := NewEngine()
		engine.positionRates = map[model.Position]float64{}
		for pos := range defaultPositionRates {
			engine.positionRates[pos] = 0
		}
		engine.LoadRoster(1, testRoster(1, 6), nil, nil)

		for week := 1; week <= 18; week++ {
			injuries, _ := engine.SimulateGame(ctx, rand.New(rand.NewSource(int64(week))), fmt.Sprintf("g%d", week), week, 1)
			So(injuries, ShouldBeEmpty)
			engine.RestWeek(ctx)
		}
		So(len(engine.ActiveRoster(1)), ShouldEqual, 6)
	})
}

func TestDeterminism(t *testing.T) {
	Convey("Given two engines fed identical seeds", t, func() {
		ctx := context.Background()
		run := func() []model.InjuryRecord {
			engine := NewEngine()
			engine.LoadRoster(1, testRoster(1, 8), nil, nil)
			var all []model.InjuryRecord
			for week := 1; week <= 17; week++ {
				rng := rand.New(rand.NewSource(int64(week) * 7919))
				injuries, _ := engine.SimulateGame(ctx, rng, fmt.Sprintf("g%d", week), week, 1)
				all = append(all, injuries...)
				engine.RestWeek(ctx)
			}
			return all
		}

		Convey("They produce identical injury histories", func() {
			So(run(), ShouldResemble, run())
		})
	})
}

func TestAvailabilityPenalty(t *testing.T) {
	Convey("Given carried state from a snapshot", t, func() {
		engine := NewEngine()
		players := testRoster(1, 3)
		fatigue := map[int]model.PlayerFatigueState{
			players[1].ID: {PlayerID: players[1].ID, Fatigue: 80},
		}
		open := []model.InjuryRecord{
			{PlayerID: players[2].ID, TeamID: 1, WeeksOut: 2},
		}
		engine.LoadRoster(1, players, fatigue, open)

		Convey("Injured starters and tired players both cost rating", func() {
			// One injured starter plus 20 fatigue points over the
			// threshold.
			So(engine.AvailabilityPenalty(1), ShouldEqual, 4.0+2.0)
		})

		Convey("A healthy rested team costs nothing", func() {
			engine.LoadRoster(2, testRoster(2, 3), nil, nil)
			So(engine.AvailabilityPenalty(2), ShouldEqual, 0.0)
		})

		Convey("The injured player is excluded from the active roster", func() {
			active := engine.ActiveRoster(1)
			So(len(active), ShouldEqual, 2)
			for _, part := range active {
				So(part.Player.ID, ShouldNotEqual, players[2].ID)
			}
		})
	})
}

func TestEffectiveRating(t *testing.T) {
	Convey("Given players at different fatigue levels", t, func() {
		engine := NewEngine(WithRatingFloor(0.5))
		fresh := &Participant{Player: model.Player{Rating: 80}}
		tired := &Participant{Player: model.Player{Rating: 80}, Fatigue: 80}
		spent := &Participant{Player: model.Player{Rating: 80}, Fatigue: 100}

		Convey("Ratings degrade monotonically with fatigue", func() {
			So(engine.EffectiveRating(fresh), ShouldEqual, 80.0)
			So(engine.EffectiveRating(tired), ShouldBeLessThan, 80.0)
			So(engine.EffectiveRating(spent), ShouldBeLessThanOrEqualTo, engine.EffectiveRating(tired))
		})

		Convey("The floor bounds the degradation", func() {
			So(engine.EffectiveRating(spent), ShouldBeGreaterThanOrEqualTo, 40.0)
		})

		Convey("Fatigued players lose snaps but never all of them", func() {
			So(tired.ActiveSnaps(), ShouldBeLessThan, fresh.ActiveSnaps())
			So(spent.ActiveSnaps(), ShouldBeGreaterThan, 0)
		})
	})
}
