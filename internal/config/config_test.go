package config_test

import (
	"testing"

	"dugout/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.BroadcastQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.DispatcherCount, convey.ShouldEqual, 4)
			convey.So(cfg.ClientBufferSize, convey.ShouldEqual, 64)
			convey.So(cfg.MaxPayloadBytes, convey.ShouldEqual, 64*1024)
		})
	})
}
