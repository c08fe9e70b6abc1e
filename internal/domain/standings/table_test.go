package standings

import (
	"context"
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/gridiron/internal/domain/model"
)

func eastTeams(n int) []model.Team {
	teams := make([]model.Team, 0, n)
	for id := 1; id <= n; id++ {
		teams = append(teams, model.Team{
			ID:         id,
			Name:       fmt.Sprintf("East %d", id),
			Conference: model.ConferenceAFC,
			Division:   model.DivisionEast,
		})
	}
	return teams
}

func played(id string, home, away, homeScore, awayScore int) model.GameResult {
	return model.GameResult{
		ID:        id,
		GameID:    id,
		HomeID:    home,
		AwayID:    away,
		HomeScore: homeScore,
		AwayScore: awayScore,
	}
}

func TestTableApply(t *testing.T) {
	Convey("Given a table over three teams", t, func() {
		ctx := context.Background()
		table := NewTable(eastTeams(3))

		Convey("A result updates both records", func() {
			So(table.Apply(ctx, played("g1", 1, 2, 24, 17)), ShouldBeNil)

			winner, ok := table.Record(1)
			So(ok, ShouldBeTrue)
			So(winner.Wins, ShouldEqual, 1)
			So(winner.DivisionWins, ShouldEqual, 1)
			So(winner.PointsFor, ShouldEqual, 24)
			So(winner.PointsAgainst, ShouldEqual, 17)
			So(winner.HeadToHead[2], ShouldEqual, 1)

			loser, ok := table.Record(2)
			So(ok, ShouldBeTrue)
			So(loser.Losses, ShouldEqual, 1)
			So(loser.DivisionLosses, ShouldEqual, 1)
			So(loser.PointDiff(), ShouldEqual, -7)
		})

		Convey("A tie counts half a win for both sides", func() {
			So(table.Apply(ctx, played("g1", 1, 2, 20, 20)), ShouldBeNil)

			rec, _ := table.Record(1)
			So(rec.Ties, ShouldEqual, 1)
			So(rec.WinPct(), ShouldEqual, 0.5)
			So(len(rec.HeadToHead), ShouldEqual, 0)
		})

		Convey("Replaying the same result id is rejected without mutation", func() {
			So(table.Apply(ctx, played("g1", 1, 2, 24, 17)), ShouldBeNil)
			err := table.Apply(ctx, played("g1", 1, 2, 24, 17))
			So(errors.Is(err, ErrDuplicateResult), ShouldBeTrue)

			rec, _ := table.Record(1)
			So(rec.Wins, ShouldEqual, 1)
			So(rec.PointsFor, ShouldEqual, 24)
		})

		Convey("Results against untracked teams are rejected atomically", func() {
			err := table.Apply(ctx, played("g9", 1, 99, 10, 3))
			So(errors.Is(err, ErrUnknownTeam), ShouldBeTrue)

			rec, _ := table.Record(1)
			So(rec.Wins, ShouldEqual, 0)
			So(rec.PointsFor, ShouldEqual, 0)
		})
	})
}

func TestTieBreakCascade(t *testing.T) {
	ctx := context.Background()

	Convey("Given two teams with equal records", t, func() {
		table := NewTable(eastTeams(4))

		// 1 and 2 both finish 1-1; 1 won the meeting but 2 has the
		// larger point differential.
		So(table.Apply(ctx, played("g1", 1, 2, 21, 20)), ShouldBeNil)
		So(table.Apply(ctx, played("g2", 2, 3, 40, 0)), ShouldBeNil)
		So(table.Apply(ctx, played("g3", 4, 1, 14, 7)), ShouldBeNil)

		Convey("Head-to-head outranks point differential", func() {
			order, err := table.Rank(ctx, []int{1, 2})
			So(err, ShouldBeNil)
			So(order, ShouldResemble, []int{1, 2})
		})
	})

	Convey("Given a three-way head-to-head cycle", t, func() {
		table := NewTable(eastTeams(3))

		// Each team beat one rival and lost to the other, so both the
		// head-to-head and division steps stay tied and point
		// differential decides: 3 (+10), 1 (+4), 2 (-14).
		So(table.Apply(ctx, played("g1", 1, 2, 27, 10)), ShouldBeNil)
		So(table.Apply(ctx, played("g2", 2, 3, 17, 14)), ShouldBeNil)
		So(table.Apply(ctx, played("g3", 3, 1, 20, 7)), ShouldBeNil)

		order, err := table.Rank(ctx, []int{1, 2, 3})
		So(err, ShouldBeNil)
		So(order, ShouldResemble, []int{3, 1, 2})
	})

	Convey("Given teams with no results at all", t, func() {
		table := NewTable(eastTeams(3))

		Convey("Ranking falls through to team id", func() {
			order, err := table.Rank(ctx, []int{3, 1, 2})
			So(err, ShouldBeNil)
			So(order, ShouldResemble, []int{1, 2, 3})
		})
	})

	Convey("Given tied teams with unequal head-to-head meeting counts", t, func() {
		teams := eastTeams(4)
		for id := 5; id <= 6; id++ {
			teams = append(teams, model.Team{
				ID:         id,
				Name:       fmt.Sprintf("West %d", id-4),
				Conference: model.ConferenceAFC,
				Division:   model.DivisionWest,
			})
		}
		table := NewTable(teams)

		// All of 1-4 finish 2-2. Within the group, 1 split four meetings
		// while 2 won its only one: raw win counts would rank 1 first, but
		// 2 owns the better head-to-head rate.
		So(table.Apply(ctx, played("g1", 1, 3, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g2", 3, 1, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g3", 1, 4, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g4", 4, 1, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g5", 2, 3, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g6", 2, 5, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g7", 6, 2, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g8", 5, 2, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g9", 3, 5, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g10", 4, 5, 20, 17)), ShouldBeNil)
		So(table.Apply(ctx, played("g11", 6, 4, 20, 17)), ShouldBeNil)

		Convey("The better rate wins even with fewer meetings", func() {
			order, err := table.Rank(ctx, []int{1, 2, 3, 4})
			So(err, ShouldBeNil)
			So(order, ShouldResemble, []int{2, 1, 4, 3})
		})
	})

	Convey("Given a subgroup that re-ties after a partition", t, func() {
		table := NewTable(eastTeams(4))

		// 1 sweeps to 3-0. 2, 3, 4 finish 1-2 in a cycle with equal
		// point differentials and points scored, so they sort by id.
		So(table.Apply(ctx, played("g1", 1, 2, 30, 20)), ShouldBeNil)
		So(table.Apply(ctx, played("g2", 1, 3, 30, 20)), ShouldBeNil)
		So(table.Apply(ctx, played("g3", 1, 4, 30, 20)), ShouldBeNil)
		So(table.Apply(ctx, played("g4", 2, 3, 17, 10)), ShouldBeNil)
		So(table.Apply(ctx, played("g5", 3, 4, 17, 10)), ShouldBeNil)
		So(table.Apply(ctx, played("g6", 4, 2, 17, 10)), ShouldBeNil)

		order, err := table.Rank(ctx, []int{4, 3, 2, 1})
		So(err, ShouldBeNil)
		So(order[0], ShouldEqual, 1)
		So(order[1:], ShouldResemble, []int{2, 3, 4})
	})
}

func TestStandings(t *testing.T) {
	Convey("Given a table with applied results", t, func() {
		ctx := context.Background()
		table := NewTable(eastTeams(3))
		So(table.Apply(ctx, played("g1", 1, 2, 28, 14)), ShouldBeNil)
		So(table.Apply(ctx, played("g2", 3, 1, 21, 24)), ShouldBeNil)

		Convey("Standings cover every team with ranks and derived stats", func() {
			entries, err := table.Standings(ctx)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 3)

			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[0].Record.Team.ID, ShouldEqual, 1)
			So(entries[0].WinPct, ShouldEqual, 1.0)
			So(entries[0].PointDiff, ShouldEqual, 17)

			for i, entry := range entries {
				So(entry.Rank, ShouldEqual, i+1)
			}
		})

		Convey("Ranking unknown teams fails", func() {
			_, err := table.Rank(ctx, []int{1, 42})
			So(errors.Is(err, ErrUnknownTeam), ShouldBeTrue)
		})
	})
}
