package graph_test

import (
	"testing"
	"time"

	graph "github.com/traffixlab/traffix/internal/domain/graph"
	model "github.com/traffixlab/traffix/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ratio(rows ...model.Row) model.Snapshot { return rows }

func TestBuild(t *testing.T) {
	Convey("Given a three-edge snapshot at one timestamp", t, func() {
		flow := func(f float64) *float64 { return &f }
		snap := ratio(
			model.Row{Source: "A", Target: "B", Congestion: 0.9, Flow: flow(1000)},
			model.Row{Source: "B", Target: "C", Congestion: 0.1, Flow: flow(500)},
			model.Row{Source: "A", Target: "C", Congestion: 0.5, Flow: flow(800)},
		)

		Convey("When built under the current regime", func() {
			g := graph.Build(snap, graph.Current)

			Convey("Then weights are the raw congestion ratios", func() {
				ab, ok := g.Edge("A", "B")
				So(ok, ShouldBeTrue)
				So(ab.Weight, ShouldEqual, 0.9)
				So(ab.Speed, ShouldEqual, graph.DefaultSpeed)
				So(g.NodeCount(), ShouldEqual, 3)
				So(g.EdgeCount(), ShouldEqual, 3)
			})
		})

		Convey("When built under the optimized regime", func() {
			g := graph.Build(snap, graph.Optimized)

			Convey("Then exactly the single most congested edge is discounted", func() {
				ab, _ := g.Edge("A", "B")
				So(ab.Weight, ShouldAlmostEqual, 0.765, 1e-9)
				bc, _ := g.Edge("B", "C")
				So(bc.Weight, ShouldEqual, 0.1)
				ac, _ := g.Edge("A", "C")
				So(ac.Weight, ShouldEqual, 0.5)
			})
		})
	})

	Convey("Given snapshots of growing size under the optimized regime", t, func() {
		Convey("Then max(1, floor(0.15n)) edges are discounted, highest congestion first", func() {
			for _, tc := range []struct {
				n    int
				want int
			}{{1, 1}, {2, 1}, {6, 1}, {7, 1}, {14, 2}, {20, 3}, {100, 15}} {
				snap := make(model.Snapshot, tc.n)
				for i := range snap {
					snap[i] = model.Row{
						Source:     "N" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
						Target:     "T",
						Congestion: float64(i+1) / float64(tc.n),
					}
				}
				g := graph.Build(snap, graph.Optimized)
				discounted := 0
				for i := range snap {
					e, ok := g.Edge(snap[i].Source, "T")
					So(ok, ShouldBeTrue)
					if e.Weight < snap[i].Congestion {
						discounted++
					}
				}
				So(discounted, ShouldEqual, tc.want)
			}
		})
	})

	Convey("Given rows spanning two timestamps", t, func() {
		t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
		snap := ratio(
			model.Row{Source: "old", Target: "older", Congestion: 0.99, Timestamp: t0},
			model.Row{Source: "A", Target: "B", Congestion: 0.3, Timestamp: t0.Add(time.Minute)},
		)

		Convey("Then only the latest rows make it into the graph", func() {
			g := graph.Build(snap, graph.Current)
			So(g.HasNode("old"), ShouldBeFalse)
			So(g.HasNode("A"), ShouldBeTrue)
			So(g.EdgeCount(), ShouldEqual, 1)
		})
	})

	Convey("Given an empty snapshot", t, func() {
		g := graph.Build(nil, graph.Optimized)

		Convey("Then a valid empty graph is produced", func() {
			So(g.NodeCount(), ShouldEqual, 0)
			So(g.EdgeCount(), ShouldEqual, 0)
			So(g.Nodes(), ShouldHaveLength, 0)
		})
	})
}

func TestParseRegime(t *testing.T) {
	Convey("Given regime wire names", t, func() {
		Convey("Then known names parse and unknown ones are flagged", func() {
			r, ok := graph.ParseRegime("current")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, graph.Current)

			r, ok = graph.ParseRegime(" Optimized ")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, graph.Optimized)

			r, ok = graph.ParseRegime("")
			So(ok, ShouldBeTrue)
			So(r, ShouldEqual, graph.Current)

			_, ok = graph.ParseRegime("nash")
			So(ok, ShouldBeFalse)
		})
	})
}
