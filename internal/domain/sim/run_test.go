package sim_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/okian/fastbreak/internal/domain/markov"
	"github.com/okian/fastbreak/internal/domain/model"
	"github.com/okian/fastbreak/internal/domain/sim"
	. "github.com/smartystreets/goconvey/convey"
)

func testBuilder(seed int64) sim.BuildFunc {
	return func(ctx context.Context) (*sim.SeasonSimulator, error) {
		ms, err := markov.Build(balancedCounts())
		if err != nil {
			return nil, err
		}
		game := sim.NewGameSimulator(ms, 99, rand.New(rand.NewSource(seed)))
		return sim.NewSeasonSimulator(game), nil
	}
}

func TestRunCompletion(t *testing.T) {
	Convey("Given a five season run", t, func() {
		run := sim.NewRun("MEM", 5, testBuilder(3))
		So(run.Status(), ShouldEqual, model.StatusPending)
		So(run.Team(), ShouldEqual, "MEM")
		So(run.Seasons(), ShouldEqual, 5)
		So(run.ID(), ShouldNotEqual, uuid.Nil)

		Convey("When started and drained", func() {
			ctx := context.Background()
			run.Start(ctx)
			run.Start(ctx) // second start must not spawn a second loop

			var events []model.Event
			for ev := range run.Events() {
				events = append(events, ev)
			}

			Convey("Then it should emit one event per season plus a final", func() {
				So(events, ShouldHaveLength, 6)
				for i := 0; i < 5; i++ {
					So(events[i].Kind, ShouldEqual, model.EventSeason)
					So(events[i].Terminal(), ShouldBeFalse)
					So(events[i].Season, ShouldNotBeNil)
					So(events[i].Season.Season, ShouldEqual, i+1)
					So(events[i].Completed, ShouldEqual, i+1)
					So(events[i].Running, ShouldNotBeNil)
					So(events[i].Running.SeasonsCompleted, ShouldEqual, i+1)
				}
				final := events[5]
				So(final.Kind, ShouldEqual, model.EventFinal)
				So(final.Terminal(), ShouldBeTrue)
				So(final.Completed, ShouldEqual, 5)
				So(final.Running.SeasonsCompleted, ShouldEqual, 5)
				So(final.Running.MinWins, ShouldBeLessThanOrEqualTo, final.Running.MaxWins)
			})

			Convey("Then the run should be completed and done", func() {
				So(run.Status(), ShouldEqual, model.StatusCompleted)
				<-run.Done()
				So(run.Cancel(), ShouldBeFalse)
			})
		})
	})
}

func TestRunCancel(t *testing.T) {
	Convey("Given a long run", t, func() {
		run := sim.NewRun("MEM", 50, testBuilder(5))

		Convey("When cancelled after three seasons", func() {
			run.Start(context.Background())
			events := run.Events()
			for i := 0; i < 3; i++ {
				ev := <-events
				So(ev.Kind, ShouldEqual, model.EventSeason)
			}
			So(run.Cancel(), ShouldBeTrue)

			var rest []model.Event
			for ev := range events {
				rest = append(rest, ev)
			}

			Convey("Then the stream should end with a cancelled event", func() {
				So(rest, ShouldNotBeEmpty)
				last := rest[len(rest)-1]
				So(last.Kind, ShouldEqual, model.EventCancelled)
				So(last.Terminal(), ShouldBeTrue)
				So(last.Completed, ShouldBeLessThan, 50)
				So(last.Running, ShouldNotBeNil)
				for _, ev := range rest[:len(rest)-1] {
					So(ev.Kind, ShouldEqual, model.EventSeason)
				}
				So(run.Status(), ShouldEqual, model.StatusCancelled)
			})
		})
	})
}

func TestRunBuildFailure(t *testing.T) {
	Convey("Given a run whose build fails", t, func() {
		boom := errors.New("profile missing")
		run := sim.NewRun("MEM", 5, func(ctx context.Context) (*sim.SeasonSimulator, error) {
			return nil, boom
		})

		Convey("When started and drained", func() {
			run.Start(context.Background())
			var events []model.Event
			for ev := range run.Events() {
				events = append(events, ev)
			}

			Convey("Then it should emit a single error event", func() {
				So(events, ShouldHaveLength, 1)
				So(events[0].Kind, ShouldEqual, model.EventFailed)
				So(events[0].Terminal(), ShouldBeTrue)
				So(errors.Is(events[0].Err, boom), ShouldBeTrue)
				So(run.Status(), ShouldEqual, model.StatusFailed)
			})
		})
	})
}

func TestRunAbandonedConsumer(t *testing.T) {
	Convey("Given a run whose consumer walks away", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		run := sim.NewRun("MEM", 1000, testBuilder(9), sim.WithEventBuffer(2))

		Convey("When the consumer context ends without draining", func() {
			run.Start(ctx)
			cancel()

			stopped := false
			select {
			case <-run.Done():
				stopped = true
			case <-time.After(5 * time.Second):
			}

			Convey("Then the run should stop on its own", func() {
				So(stopped, ShouldBeTrue)
				So(run.Status(), ShouldEqual, model.StatusCancelled)
			})
		})
	})
}
