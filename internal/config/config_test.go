package config_test

import (
	"context"
	"runtime"
	"testing"

	"donorpulse/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.BatchQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.LookbackYears, convey.ShouldEqual, 5.0)
			convey.So(cfg.RecentWindowYears, convey.ShouldEqual, 2.0)
			convey.So(cfg.CVThreshold, convey.ShouldEqual, 0.5)
		})
	})
}
