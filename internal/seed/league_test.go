package seed_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/okian/fastbreak/internal/adapters/repository"
	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/state"
	"github.com/okian/fastbreak/internal/seed"
	"github.com/okian/fastbreak/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// parse converts seeded rows back into engine transition counts.
func parse(t *testing.T, team string, rows []repository.TransitionRow) []markov.TransitionCount {
	t.Helper()
	counts := make([]markov.TransitionCount, 0, len(rows))
	for _, r := range rows {
		from, err := state.Parse(team, r.State)
		So(err, ShouldBeNil)
		to, err := state.Parse(team, r.NextState)
		So(err, ShouldBeNil)
		counts = append(counts, markov.TransitionCount{From: from, To: to, Count: r.Count})
	}
	return counts
}

func TestLeagueGeneration(t *testing.T) {
	Convey("Given a synthesized league", t, func() {
		league := seed.League("2024-25", 4, 82, 7)

		Convey("Then it should produce the requested teams in league order", func() {
			So(len(league), ShouldEqual, 4)
			So(league[0].Team, ShouldEqual, "ATL")
			So(league[3].Team, ShouldEqual, "CHA")
		})

		Convey("Then the same seed should reproduce the same league", func() {
			again := seed.League("2024-25", 4, 82, 7)
			So(again, ShouldResemble, league)
		})

		Convey("Then a different seed should produce different counts", func() {
			other := seed.League("2024-25", 4, 82, 8)
			So(other, ShouldNotResemble, league)
		})

		Convey("Then every team's counts should build a valid matrix pair", func() {
			for _, td := range league {
				counts := parse(t, td.Team, td.Transitions)
				ms, err := markov.Build(counts)
				So(err, ShouldBeNil)
				So(ms.Validate(), ShouldBeNil)
			}
		})

		Convey("Then every team's profile should assemble", func() {
			for _, td := range league {
				p, err := markov.ProfileFromMetrics(td.Profile)
				So(err, ShouldBeNil)
				So(p.PossPerGame, ShouldBeGreaterThan, 80)
				So(p.PossPerGame, ShouldBeLessThan, 120)
				So(p.FG2Pct, ShouldBeBetween, 0.4, 0.7)
				So(p.TOVPct, ShouldBeBetween, 0.05, 0.25)
			}
		})

		Convey("Then the seeded rates should keep complementary shares summing to one", func() {
			for _, td := range league {
				r := td.Rates
				So(r[markov.RatePer2ptFromOREB]+r[markov.RatePer2ptFromStartTOV], ShouldAlmostEqual, 1.0, 1e-9)
				So(r[markov.RatePer3ptFromOREB]+r[markov.RatePer3ptFromStartTOV], ShouldAlmostEqual, 1.0, 1e-9)
			}
		})

		Convey("Then adjustments built on the seeded data should apply cleanly", func() {
			td := league[0]
			counts := parse(t, td.Team, td.Transitions)
			profile, err := markov.ProfileFromMetrics(td.Profile)
			So(err, ShouldBeNil)

			adj := markov.Adjustments{markov.MetricFG2: profile.FG2Pct * 1.05}
			ms, err := markov.BuildAdjusted(counts, profile, markov.Rates(td.Rates), adj)
			So(err, ShouldBeNil)
			So(ms.Validate(), ShouldBeNil)
		})
	})
}

func TestLeagueBounds(t *testing.T) {
	Convey("Given out-of-range generation arguments", t, func() {
		Convey("When the team count is zero or too large", func() {
			So(len(seed.League("2024-25", 0, 82, 1)), ShouldEqual, len(seed.TeamCodes))
			So(len(seed.League("2024-25", 99, 82, 1)), ShouldEqual, len(seed.TeamCodes))
		})

		Convey("When the game count is zero it should fall back to a full season", func() {
			league := seed.League("2024-25", 1, 0, 1)
			p, err := markov.ProfileFromMetrics(league[0].Profile)
			So(err, ShouldBeNil)
			// A full season of attempts, not a handful.
			So(p.FG2Att, ShouldBeGreaterThan, 1000)
		})
	})
}

func TestRunWritesThroughStore(t *testing.T) {
	Convey("Given a seeding run against a fresh database", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "possessions.db")

		err := seed.Run(ctx, &seed.Config{
			DBPath: path,
			Season: "2024-25",
			Teams:  3,
			Games:  82,
			Seed:   7,
		})
		So(err, ShouldBeNil)

		Convey("Then the store should hold the seeded league", func() {
			store, err := repository.Open(ctx, path)
			So(err, ShouldBeNil)
			defer store.Close()

			teams, err := store.Teams(ctx, "2024-25")
			So(err, ShouldBeNil)
			So(teams, ShouldResemble, []string{"ATL", "BKN", "BOS"})

			profile, err := store.Profile(ctx, "BOS", "2024-25")
			So(err, ShouldBeNil)
			_, err = markov.ProfileFromMetrics(profile)
			So(err, ShouldBeNil)

			rows, err := store.TransitionCounts(ctx, "BOS", "2024-25")
			So(err, ShouldBeNil)
			So(len(rows), ShouldBeGreaterThan, 20)

			rates, err := store.Rates(ctx, "BOS", "2024-25")
			So(err, ShouldBeNil)
			So(len(rates), ShouldEqual, 7)
		})
	})
}
