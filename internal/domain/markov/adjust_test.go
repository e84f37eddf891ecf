package markov_test

import (
	"errors"
	"testing"

	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/state"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAdjustmentsValidate(t *testing.T) {
	Convey("Given user-supplied adjustments", t, func() {
		Convey("When every target is a known metric in range", func() {
			adj := markov.Adjustments{
				markov.MetricFG2:    0.58,
				markov.MetricOppTOV: 0.16,
			}

			Convey("Then validation should pass", func() {
				So(adj.Validate(), ShouldBeNil)
			})
		})

		Convey("When a metric key is unknown", func() {
			adj := markov.Adjustments{"steals_pct": 0.1}
			err := adj.Validate()

			Convey("Then it should fail as a validation error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, markov.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When a target leaves the unit interval", func() {
			Convey("Then values above one should fail", func() {
				err := markov.Adjustments{markov.MetricFT: 1.02}.Validate()
				So(errors.Is(err, markov.ErrValidation), ShouldBeTrue)
			})

			Convey("Then negative values should fail", func() {
				err := markov.Adjustments{markov.MetricFG3: -0.01}.Validate()
				So(errors.Is(err, markov.ErrValidation), ShouldBeTrue)
			})
		})
	})
}

func TestBuildAdjustedNoOp(t *testing.T) {
	Convey("Given targets within epsilon of the baseline", t, func() {
		counts := leagueCounts()
		profile := testProfile()
		adj := markov.Adjustments{
			markov.MetricFG2: profile.FG2Pct + 0.00005,
			markov.MetricTOV: profile.TOVPct,
		}

		Convey("When building base and adjusted matrices", func() {
			base, err := markov.Build(counts)
			So(err, ShouldBeNil)
			adjusted, err := markov.BuildAdjusted(counts, profile, markov.DefaultRates(), adj)
			So(err, ShouldBeNil)

			Convey("Then every cell should be numerically identical", func() {
				for from := state.State(0); from < state.Count; from++ {
					for to := state.State(0); to < state.Count; to++ {
						So(adjusted.Prob(from, to), ShouldEqual, base.Prob(from, to))
					}
				}
			})
		})
	})
}

func TestBuildAdjustedImprovement(t *testing.T) {
	Convey("Given a two point percentage improvement", t, func() {
		counts := leagueCounts()
		profile := testProfile()
		rates := markov.DefaultRates()
		adj := markov.Adjustments{markov.MetricFG2: 0.60}

		Convey("When building the adjusted matrices", func() {
			base, err := markov.Build(counts)
			So(err, ShouldBeNil)
			adjusted, err := markov.BuildAdjusted(counts, profile, rates, adj)
			So(err, ShouldBeNil)

			Convey("Then the made-two share should carry the extra makes", func() {
				// 120 extra makes, 87% from offense start, on a row of 5804.
				want := (1080.0 + 120*0.87) / 5804.0
				So(adjusted.Prob(state.TeamOffenseStart, state.TeamMade2), ShouldAlmostEqual, want, 1e-9)
				So(adjusted.Prob(state.TeamOffenseStart, state.TeamMade2),
					ShouldBeGreaterThan, base.Prob(state.TeamOffenseStart, state.TeamMade2))
			})

			Convey("Then the compensating mass should come off the rebound outcomes", func() {
				So(adjusted.Prob(state.TeamOffenseStart, state.OppDREB),
					ShouldBeLessThan, base.Prob(state.TeamOffenseStart, state.OppDREB))
			})

			Convey("Then every row should still sum to one", func() {
				for from := state.State(0); from < state.Count; from++ {
					So(rowSum(adjusted, from), ShouldAlmostEqual, 1.0, markov.RowSumTolerance)
				}
			})

			Convey("Then the base matrices should be untouched", func() {
				So(base.Prob(state.TeamOffenseStart, state.TeamMade2), ShouldAlmostEqual, 1080.0/5804.0, 1e-12)
			})
		})
	})
}

func TestBuildAdjustedDrainsRow(t *testing.T) {
	Convey("Given a team whose offense start row holds only turnovers", t, func() {
		counts := []markov.TransitionCount{
			count(state.TeamOffenseStart, state.TeamTurnover, 100),
			count(state.TeamMadeFT, state.OppOffenseStart, 10),
			count(state.TeamTurnover, state.OppOffenseStart, 100),
			count(state.TeamOREB, state.OppDREB, 10),
			count(state.OppOffenseStart, state.TeamDREB, 10),
			count(state.OppMadeFT, state.TeamOffenseStart, 10),
			count(state.OppTurnover, state.TeamOffenseStart, 10),
			count(state.OppOREB, state.TeamDREB, 10),
		}
		profile := testProfile()
		profile.Turnovers = 150

		Convey("When an adjustment wipes out more turnovers than the row holds", func() {
			// No rates, so no compensating mass lands anywhere.
			_, err := markov.BuildAdjusted(counts, profile, nil, markov.Adjustments{markov.MetricTOV: 0})

			Convey("Then it should fail as a validation error, not a data error", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, markov.ErrValidation), ShouldBeTrue)
				So(errors.Is(err, markov.ErrData), ShouldBeFalse)
			})
		})
	})
}

func TestBuildAdjustedRejectsEarly(t *testing.T) {
	Convey("Given an invalid adjustment set", t, func() {
		Convey("When building with an unknown metric", func() {
			_, err := markov.BuildAdjusted(leagueCounts(), testProfile(), markov.DefaultRates(),
				markov.Adjustments{"assists_pct": 0.3})

			Convey("Then it should fail before any matrix work", func() {
				So(errors.Is(err, markov.ErrValidation), ShouldBeTrue)
			})
		})
	})
}
