// Package summary aggregates network-wide routing efficiency from a
// traffic snapshot: the Price of Anarchy over every current edge, its
// monetized counterpart, throughput, and the worst bottleneck.
package summary

import (
	"math"
	"sort"

	"github.com/traffixlab/traffix/internal/domain/cost"
	"github.com/traffixlab/traffix/internal/domain/model"
)

// Status labels for the efficiency report.
const (
	StatusOptimal     = "Optimal"
	StatusInefficient = "Inefficient"
	StatusNoData      = "No Data"
)

// Aggregation constants.
const (
	// congestionCapPercent is the hard cap applied to per-edge congestion
	// when simulating the coordinated regime for the unitless Price of
	// Anarchy. This is intentionally NOT the proportional discount used
	// by the monetized report or the routing graph; the two reports
	// answer different questions and stay separate.
	congestionCapPercent = 70.0

	// inefficiencyThreshold marks the PoA above which selfish routing is
	// flagged as inefficient.
	inefficiencyThreshold = 1.1

	// linkBaseHours is the free-flow traversal time per link used by the
	// monetized report.
	linkBaseHours = 0.5

	// defaultFlow substitutes for links with no observed flow in the
	// monetized sums.
	defaultFlow = 1000.0

	// ValueOfTimePerHour monetizes one vehicle-hour of travel.
	ValueOfTimePerHour = 150.0

	// Proportional discount applied to the most congested links for the
	// monetized coordinated scenario.
	discountShare  = 0.15
	discountFactor = 0.85
)

// Bottleneck identifies the single most congested edge.
type Bottleneck struct {
	Source            string
	Target            string
	CongestionPercent float64
}

// Summary is the network-wide efficiency report, recomputed from the
// current snapshot on every request.
type Summary struct {
	NashCost       float64
	OptimalCost    float64
	PriceOfAnarchy float64
	Status         string

	MonetizedNashCost    float64
	MonetizedOptimalCost float64
	TotalThroughput      float64

	Bottleneck *Bottleneck
}

// Summarize evaluates every edge of the current snapshot under both the
// decentralized and coordinated regimes and aggregates the totals. An
// empty snapshot yields a well-formed zero report.
func Summarize(snap model.Snapshot) Summary {
	rows := snap.Current()
	if len(rows) == 0 {
		return Summary{Status: StatusNoData}
	}

	nash := 0.0
	optimal := 0.0
	for _, r := range rows {
		score := r.Congestion * 100
		nash += cost.TravelTime(score)
		if score > congestionCapPercent {
			score = congestionCapPercent
		}
		optimal += cost.TravelTime(score)
	}
	if optimal == 0 {
		optimal = 1
	}
	poa := nash / optimal

	status := StatusOptimal
	if poa > inefficiencyThreshold {
		status = StatusInefficient
	}

	monetizedNash, monetizedOptimal, throughput := monetize(rows)

	return Summary{
		NashCost:       math.Round(nash),
		OptimalCost:    math.Round(optimal),
		PriceOfAnarchy: round2(poa),
		Status:         status,

		MonetizedNashCost:    round2(monetizedNash),
		MonetizedOptimalCost: round2(monetizedOptimal),
		TotalThroughput:      throughput,

		Bottleneck: bottleneck(rows),
	}
}

// monetize computes the currency-denominated system cost for the
// observed flows, plus the coordinated variant that proportionally
// discounts the top 15% most congested links. The discount selection is
// recomputed here on purpose rather than reusing the routing graph's
// optimized weights.
func monetize(rows model.Snapshot) (nash, optimal, throughput float64) {
	for _, r := range rows {
		flow := defaultFlow
		if r.Flow != nil {
			flow = *r.Flow
			throughput += *r.Flow
		}
		nash += flow * cost.LinkTime(r.Congestion, linkBaseHours)
	}

	discounted := append(model.Snapshot(nil), rows...)
	order := make([]int, len(discounted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return discounted[order[a]].Congestion > discounted[order[b]].Congestion
	})
	k := len(discounted) * 15 / 100
	if k < 1 {
		k = 1
	}
	for _, idx := range order[:k] {
		discounted[idx].Congestion *= discountFactor
	}

	for _, r := range discounted {
		flow := defaultFlow
		if r.Flow != nil {
			flow = *r.Flow
		}
		optimal += flow * cost.LinkTime(r.Congestion, linkBaseHours)
	}

	return nash * ValueOfTimePerHour, optimal * ValueOfTimePerHour, throughput
}

// bottleneck returns the row with maximum congestion. Ties keep the
// first occurrence in snapshot order.
func bottleneck(rows model.Snapshot) *Bottleneck {
	worst := 0
	for i := 1; i < len(rows); i++ {
		if rows[i].Congestion > rows[worst].Congestion {
			worst = i
		}
	}
	return &Bottleneck{
		Source:            rows[worst].Source,
		Target:            rows[worst].Target,
		CongestionPercent: round1(rows[worst].Congestion * 100),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
