package service

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/traffixlab/traffix/internal/adapters/insight"
	"github.com/traffixlab/traffix/internal/domain/forecast"
	"github.com/traffixlab/traffix/internal/domain/graph"
	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/internal/domain/summary"
	"github.com/traffixlab/traffix/internal/domain/types"
	"github.com/traffixlab/traffix/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type stubInsight struct {
	lastReq insight.Request
	answer  types.Insight
}

func (s *stubInsight) Analyze(_ context.Context, req insight.Request) types.Insight {
	s.lastReq = req
	return s.answer
}

type stubProvider struct {
	prediction float64
}

func (p *stubProvider) TryLoad(context.Context) error { return nil }
func (p *stubProvider) Loaded() bool                  { return true }
func (p *stubProvider) Predict([]float64) (float64, error) {
	return p.prediction, nil
}
func (p *stubProvider) Encode(string, string) int { return 1 }

func f(v float64) *float64 { return &v }

// scenarioRows is a three-node network with one heavily loaded segment.
func scenarioRows() []model.Row {
	return []model.Row{
		{Source: "A", Target: "B", Congestion: 0.9, Flow: f(1000)},
		{Source: "B", Target: "C", Congestion: 0.1, Flow: f(500)},
		{Source: "A", Target: "C", Congestion: 0.5, Flow: f(800)},
	}
}

// startService starts a service with the scenario snapshot applied
// through the refresh pipeline and returns it with a cleanup function.
func startService(t *testing.T, opts ...Option) *Service {
	t.Helper()

	svc := New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

// applyScenario pushes the scenario batch and waits for the refresher
// to install it.
func applyScenario(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()

	if svc.SeenAndRecord(ctx, "batch-1") {
		t.Fatal("fresh batch id reported as duplicate")
	}
	if !svc.Enqueue(ctx, model.Batch{ID: "batch-1", Rows: scenarioRows()}) {
		t.Fatal("enqueue rejected")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rows, ok := svc.GetStats()["snapshotRows"].(int); ok && rows == 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("snapshot was not applied in time")
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := New(
			WithQueueSize(16),
			WithDedupeSize(64),
			WithInsightClient(&stubInsight{}),
		)

		Convey("When starting it", func() {
			err := svc.Start(context.Background())
			So(err, ShouldBeNil)
			defer svc.Stop()

			Convey("Then stats report a running service", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["queueSize"], ShouldEqual, 16)
				So(stats["snapshotRows"], ShouldEqual, 0)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And stopping flips the started flag", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldBeFalse)
			})
		})
	})
}

func TestServiceRefreshAndRouting(t *testing.T) {
	Convey("Given a started service with the scenario snapshot", t, func() {
		svc := startService(t, WithInsightClient(&stubInsight{}))
		applyScenario(t, svc)
		ctx := context.Background()

		Convey("Then the node list is the sorted union of endpoints", func() {
			So(svc.ListNodes(ctx), ShouldResemble, []string{"A", "B", "C"})
		})

		Convey("When routing A to C under current conditions", func() {
			p, err := svc.FindPath(ctx, "A", "C", graph.Current)
			So(err, ShouldBeNil)

			Convey("Then the direct edge beats the detour through B", func() {
				So(p.Nodes, ShouldResemble, []string{"A", "C"})
				So(p.Edges, ShouldHaveLength, 1)
				So(p.Edges[0].CongestionPercent, ShouldAlmostEqual, 50)
				So(p.Regime, ShouldEqual, "current")
				So(p.TotalWeight, ShouldBeGreaterThan, 0)
			})
		})

		Convey("When routing under optimized conditions", func() {
			p, err := svc.FindPath(ctx, "A", "C", graph.Optimized)
			So(err, ShouldBeNil)

			Convey("Then the direct edge still wins", func() {
				So(p.Nodes, ShouldResemble, []string{"A", "C"})
				So(p.Regime, ShouldEqual, "optimized")
			})
		})

		Convey("When routing to an unknown node", func() {
			_, err := svc.FindPath(ctx, "A", "Z", graph.Current)
			So(err, ShouldNotBeNil)
		})

		Convey("When repeating a query", func() {
			first, err := svc.FindPath(ctx, "A", "C", graph.Current)
			So(err, ShouldBeNil)
			second, err := svc.FindPath(ctx, "A", "C", graph.Current)
			So(err, ShouldBeNil)

			Convey("Then the cached graph yields the same answer", func() {
				So(second, ShouldResemble, first)
			})
		})
	})
}

func TestServiceReports(t *testing.T) {
	Convey("Given a started service with the scenario snapshot", t, func() {
		svc := startService(t, WithInsightClient(&stubInsight{}))
		applyScenario(t, svc)
		ctx := context.Background()

		Convey("When requesting the traffic status", func() {
			report := svc.TrafficStatus(ctx)

			Convey("Then the graph data mirrors the snapshot in percent", func() {
				So(report.GraphData, ShouldHaveLength, 3)
				So(report.GraphData[0].Congestion, ShouldAlmostEqual, 90)
				So(report.GraphData[0].Flow, ShouldAlmostEqual, 1000)
			})

			Convey("And the network is flagged inefficient", func() {
				So(report.Metrics.PriceOfAnarchy, ShouldBeGreaterThan, 1.1)
				So(report.Metrics.Status, ShouldEqual, summary.StatusInefficient)
			})

			Convey("And the bottleneck is the overloaded segment", func() {
				So(report.Bottleneck, ShouldNotBeNil)
				So(report.Bottleneck.From, ShouldEqual, "A")
				So(report.Bottleneck.To, ShouldEqual, "B")
				So(report.Bottleneck.Congestion, ShouldAlmostEqual, 90)
			})
		})

		Convey("When requesting the cost summary", func() {
			cost := svc.CostSummary(ctx)

			Convey("Then savings bridge the two monetized totals", func() {
				So(cost.MonetizedNashCost, ShouldBeGreaterThan, cost.MonetizedOptimalCost)
				So(cost.PotentialSavings, ShouldAlmostEqual,
					round2(cost.MonetizedNashCost-cost.MonetizedOptimalCost), 0.01)
				So(cost.TotalThroughput, ShouldAlmostEqual, 2300)
				So(cost.ValueOfTimePerHour, ShouldEqual, summary.ValueOfTimePerHour)
			})
		})

		Convey("When the snapshot is empty", func() {
			empty := startService(t, WithInsightClient(&stubInsight{}))

			report := empty.TrafficStatus(ctx)
			So(report.GraphData, ShouldHaveLength, 0)
			So(report.Metrics.Status, ShouldEqual, summary.StatusNoData)
			So(report.Bottleneck, ShouldBeNil)
		})
	})
}

func TestServiceForecast(t *testing.T) {
	Convey("Given a service with a loaded model", t, func() {
		svc := startService(t,
			WithInsightClient(&stubInsight{}),
			WithForecastProvider(&stubProvider{prediction: 0.5}),
		)

		Convey("When predicting congestion", func() {
			out := svc.Forecast(context.Background(), forecast.Input{
				Source: "A", Target: "B", Hour: 8,
			})

			Convey("Then the model tier answers", func() {
				So(out.Congestion, ShouldAlmostEqual, 50)
				So(out.Confidence, ShouldEqual, forecast.ConfidenceMedium)
				So(out.Degraded, ShouldBeFalse)
			})
		})
	})

	Convey("Given a service without a model", t, func() {
		svc := startService(t, WithInsightClient(&stubInsight{}))

		Convey("When predicting congestion", func() {
			out := svc.Forecast(context.Background(), forecast.Input{
				Source: "A", Target: "B", Hour: 8,
			})

			Convey("Then the heuristic tier answers with a degraded flag", func() {
				So(out.Degraded, ShouldBeTrue)
				So(out.Reason, ShouldEqual, forecast.ReasonModelUnavailable)
				So(out.Congestion, ShouldBeBetweenOrEqual, 20, 90)
			})
		})
	})
}

func TestServiceInsight(t *testing.T) {
	Convey("Given a service with a stubbed analysis client", t, func() {
		stub := &stubInsight{answer: types.Insight{Insight: "ease A-B", Format: "json"}}
		svc := startService(t, WithInsightClient(stub))

		Convey("When asking for an insight", func() {
			req := insight.Request{PoA: 2.2, Location: "A-B", Congestion: 90, Intent: insight.IntentCause}
			out := svc.Insight(context.Background(), req)

			Convey("Then the client answer passes through untouched", func() {
				So(out.Insight, ShouldEqual, "ease A-B")
				So(out.Format, ShouldEqual, "json")
				So(stub.lastReq, ShouldResemble, req)
			})
		})
	})
}

func TestServiceDedupe(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService(t, WithInsightClient(&stubInsight{}))
		ctx := context.Background()

		Convey("When recording a batch id twice", func() {
			So(svc.SeenAndRecord(ctx, "b-1"), ShouldBeFalse)
			So(svc.SeenAndRecord(ctx, "b-1"), ShouldBeTrue)

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "b-1")
				So(svc.SeenAndRecord(ctx, "b-1"), ShouldBeFalse)
			})
		})
	})
}
