package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/traffixlab/traffix/internal/adapters/http/api"
	"github.com/traffixlab/traffix/internal/adapters/http/site"
	"github.com/traffixlab/traffix/internal/adapters/http/swagger"
	app "github.com/traffixlab/traffix/internal/app"
	"github.com/traffixlab/traffix/internal/config"
	"github.com/traffixlab/traffix/pkg/metrics"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("TRAFFIX_ADDR", ":8080")
			_ = os.Setenv("TRAFFIX_REFRESH_QUEUE_SIZE", "1000")
			defer func() {
				_ = os.Unsetenv("TRAFFIX_ADDR")
				_ = os.Unsetenv("TRAFFIX_REFRESH_QUEUE_SIZE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RefreshQueueSize, convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := app.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := app.New(
					app.WithQueueSize(2000),
					app.WithDedupeSize(1000),
					app.WithGraphCacheTTL(time.Minute),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				registry := prometheus.NewRegistry()
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(registry))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should stop on context cancellation", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics updater", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should stop on context cancellation", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := app.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given main application integration", t, func() {
		convey.Convey("When wiring the full route table", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg, convey.ShouldNotBeNil)

			svc := app.New(
				app.WithQueueSize(cfg.RefreshQueueSize),
				app.WithDedupeSize(cfg.DedupeSize),
			)
			convey.So(svc, convey.ShouldNotBeNil)

			server := api.NewServer(svc, svc)
			convey.So(server, convey.ShouldNotBeNil)

			mux := http.NewServeMux()
			convey.So(func() {
				swagger.Register(ctx, mux)
				server.Register(ctx, mux)
				site.Register(ctx, mux)
			}, convey.ShouldNotPanic)

			svc.Stop()
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given main application error handling", t, func() {
		convey.Convey("When the listen address is cleared", func() {
			_ = os.Setenv("TRAFFIX_ADDR", "")
			defer func() { _ = os.Unsetenv("TRAFFIX_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				ctx := context.Background()
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When creating a service with out-of-range options", func() {
			convey.Convey("Then the defaults are kept", func() {
				svc := app.New(
					app.WithQueueSize(0),
					app.WithDedupeSize(0),
					app.WithGraphCacheTTL(0),
				)
				convey.So(svc, convey.ShouldNotBeNil)
				convey.So(svc.GetStats()["queueSize"], convey.ShouldEqual, 1024)
			})
		})
	})
}
