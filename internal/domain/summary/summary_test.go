package summary_test

import (
	"testing"

	model "github.com/traffixlab/traffix/internal/domain/model"
	summary "github.com/traffixlab/traffix/internal/domain/summary"
	. "github.com/smartystreets/goconvey/convey"
)

func fl(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	Convey("Given the dashboard example snapshot", t, func() {
		snap := model.Snapshot{
			{Source: "A", Target: "B", Congestion: 0.9, Flow: fl(1000)},
			{Source: "B", Target: "C", Congestion: 0.1, Flow: fl(500)},
			{Source: "A", Target: "C", Congestion: 0.5, Flow: fl(800)},
		}
		s := summary.Summarize(snap)

		Convey("Then the Nash and capped optimal sums match the BPR formula", func() {
			// TT(90)+TT(10)+TT(50) = 625.09375 + 10.09375 + 68.59375
			So(s.NashCost, ShouldEqual, 704)
			// 90 capped to 70: TT(70)+TT(10)+TT(50)
			So(s.OptimalCost, ShouldEqual, 314)
			So(s.PriceOfAnarchy, ShouldAlmostEqual, 2.24, 1e-9)
			So(s.Status, ShouldEqual, summary.StatusInefficient)
		})

		Convey("Then the monetized report uses flows and the proportional discount", func() {
			So(s.MonetizedNashCost, ShouldAlmostEqual, 180444.19, 0.01)
			So(s.MonetizedOptimalCost, ShouldAlmostEqual, 176916.06, 0.01)
			So(s.MonetizedOptimalCost, ShouldBeLessThan, s.MonetizedNashCost)
			So(s.TotalThroughput, ShouldEqual, 2300)
		})

		Convey("Then the bottleneck is the A->B edge at 90%", func() {
			So(s.Bottleneck, ShouldNotBeNil)
			So(s.Bottleneck.Source, ShouldEqual, "A")
			So(s.Bottleneck.Target, ShouldEqual, "B")
			So(s.Bottleneck.CongestionPercent, ShouldEqual, 90)
		})
	})

	Convey("Given a snapshot where every link is free flowing", t, func() {
		snap := model.Snapshot{
			{Source: "A", Target: "B", Congestion: 0},
			{Source: "B", Target: "C", Congestion: 0},
		}
		s := summary.Summarize(snap)

		Convey("Then the Price of Anarchy is exactly 1 and the status Optimal", func() {
			So(s.PriceOfAnarchy, ShouldEqual, 1)
			So(s.Status, ShouldEqual, summary.StatusOptimal)
			So(s.PriceOfAnarchy, ShouldBeGreaterThanOrEqualTo, 0)
		})
	})

	Convey("Given a snapshot hovering at the inefficiency threshold", t, func() {
		Convey("Then the status flips to Inefficient only above a PoA of 1.1", func() {
			mild := summary.Summarize(model.Snapshot{
				{Source: "A", Target: "B", Congestion: 0.71},
			})
			So(mild.PriceOfAnarchy, ShouldBeGreaterThan, 1)

			jammed := summary.Summarize(model.Snapshot{
				{Source: "A", Target: "B", Congestion: 0.95},
			})
			So(jammed.PriceOfAnarchy, ShouldBeGreaterThan, 1.1)
			So(jammed.Status, ShouldEqual, summary.StatusInefficient)
		})
	})

	Convey("Given rows without observed flow", t, func() {
		s := summary.Summarize(model.Snapshot{
			{Source: "A", Target: "B", Congestion: 0.5},
		})

		Convey("Then throughput is zero but the monetized sums use the default flow", func() {
			So(s.TotalThroughput, ShouldEqual, 0)
			So(s.MonetizedNashCost, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given an empty snapshot", t, func() {
		s := summarizeEmpty()

		Convey("Then a well-formed zero report comes back instead of an error", func() {
			So(s.Status, ShouldEqual, summary.StatusNoData)
			So(s.NashCost, ShouldEqual, 0)
			So(s.OptimalCost, ShouldEqual, 0)
			So(s.PriceOfAnarchy, ShouldEqual, 0)
			So(s.Bottleneck, ShouldBeNil)
		})
	})
}

func summarizeEmpty() summary.Summary {
	return summary.Summarize(nil)
}
