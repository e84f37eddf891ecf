package model_test

import (
	"encoding/json"
	"errors"
	"testing"

	model "github.com/okian/fastbreak/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSeasonRecordWireFormat(t *testing.T) {
	convey.Convey("Given a season record", t, func() {
		record := model.SeasonRecord{
			Season: 3,
			Games: []model.GameRecord{
				{Game: 1, TeamScore: 112, OppScore: 104, Win: true, Wins: 1, ExpectedWins: 82.0},
			},
			ExpectedWins:  51.24,
			Wins:          51,
			WinPercentage: 0.622,
		}

		convey.Convey("When marshaling it for the API", func() {
			raw, err := json.Marshal(record)

			convey.Convey("Then it should use the documented field names", func() {
				convey.So(err, convey.ShouldBeNil)
				body := string(raw)
				convey.So(body, convey.ShouldContainSubstring, `"season":3`)
				convey.So(body, convey.ShouldContainSubstring, `"final_expected_wins":51.24`)
				convey.So(body, convey.ShouldContainSubstring, `"total_wins":51`)
				convey.So(body, convey.ShouldContainSubstring, `"win_percentage":0.622`)
				convey.So(body, convey.ShouldContainSubstring, `"is_win":true`)
				convey.So(body, convey.ShouldContainSubstring, `"expected_wins":82`)
			})
		})
	})
}

func TestRunningStatisticsWireFormat(t *testing.T) {
	convey.Convey("Given running statistics", t, func() {
		stats := model.RunningStatistics{
			AverageExpectedWins:  50.0,
			StandardDeviation:    1.5811,
			ConfidenceInterval95: 1.3859,
			MinWins:              48,
			MaxWins:              52,
			SeasonsCompleted:     5,
		}

		convey.Convey("When marshaling them for the API", func() {
			raw, err := json.Marshal(stats)

			convey.Convey("Then it should use the documented field names", func() {
				convey.So(err, convey.ShouldBeNil)
				body := string(raw)
				convey.So(body, convey.ShouldContainSubstring, `"average_expected_wins":50`)
				convey.So(body, convey.ShouldContainSubstring, `"standard_deviation":1.5811`)
				convey.So(body, convey.ShouldContainSubstring, `"confidence_interval_95":1.3859`)
				convey.So(body, convey.ShouldContainSubstring, `"seasons_completed":5`)
			})
		})
	})
}

func TestEventTerminal(t *testing.T) {
	convey.Convey("Given the event kinds", t, func() {
		convey.Convey("When checking terminality", func() {
			convey.Convey("Then season events should keep the stream open", func() {
				ev := model.Event{Kind: model.EventSeason, Season: &model.SeasonRecord{Season: 1}}
				convey.So(ev.Terminal(), convey.ShouldBeFalse)
			})

			convey.Convey("Then final statistics should close the stream", func() {
				ev := model.Event{Kind: model.EventFinal, Running: &model.RunningStatistics{}}
				convey.So(ev.Terminal(), convey.ShouldBeTrue)
			})

			convey.Convey("Then cancellation should close the stream", func() {
				ev := model.Event{Kind: model.EventCancelled, Completed: 3}
				convey.So(ev.Terminal(), convey.ShouldBeTrue)
			})

			convey.Convey("Then failure should close the stream", func() {
				ev := model.Event{Kind: model.EventFailed, Err: errors.New("no data")}
				convey.So(ev.Terminal(), convey.ShouldBeTrue)
			})
		})
	})
}

func TestStatusValues(t *testing.T) {
	convey.Convey("Given the run lifecycle", t, func() {
		convey.Convey("When rendering statuses", func() {
			convey.Convey("Then each status should have a stable wire value", func() {
				convey.So(string(model.StatusPending), convey.ShouldEqual, "pending")
				convey.So(string(model.StatusRunning), convey.ShouldEqual, "running")
				convey.So(string(model.StatusCompleted), convey.ShouldEqual, "completed")
				convey.So(string(model.StatusCancelled), convey.ShouldEqual, "cancelled")
				convey.So(string(model.StatusFailed), convey.ShouldEqual, "failed")
			})
		})
	})
}
