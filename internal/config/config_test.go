package config_test

import (
	"context"
	"testing"

	"github.com/okian/fastbreak/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DBPath, convey.ShouldEqual, "fastbreak.db")
			convey.So(cfg.DefaultSeason, convey.ShouldEqual, "2024-25")
			convey.So(cfg.DefaultSeasons, convey.ShouldEqual, 10)
			convey.So(cfg.MaxSeasons, convey.ShouldEqual, 50)
			convey.So(cfg.EventBuffer, convey.ShouldEqual, 4)
			convey.So(cfg.MaxWalkSteps, convey.ShouldEqual, 50)
		})
	})
}
