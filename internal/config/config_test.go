package config_test

import (
	"context"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/traffixlab/traffix/internal/config"
)

func TestNewDefaults(t *testing.T) {
	convey.Convey("Given a fresh config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then defaults are sane", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.SnapshotPath, convey.ShouldEqual, "data/traffic.csv")
			convey.So(cfg.ModelPath, convey.ShouldEqual, "data/congestion_model.json")
			convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.GraphCacheTTLSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.InsightTimeoutMS, convey.ShouldEqual, 10_000)
		})
	})
}
