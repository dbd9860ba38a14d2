// Package cost implements the BPR-style (Bureau of Public Roads)
// travel-time functions used by the network reports.
//
// Two parameterizations coexist on purpose. TravelTime works on the
// 0-100 congestion score used by the per-edge efficiency sum; LinkTime
// works on the raw 0-1 congestion ratio used by the monetized network
// cost. They answer different analytical questions and must not be
// unified.
package cost

import "math"

// BPR parameters shared by both forms.
const (
	alpha = 0.15
	beta  = 4
)

// Percentage-scale parameters: a score of 20 is free flow, 100 is jammed.
const (
	scoreDivisor    = 20.0
	DefaultFreeFlow = 10.0
)

// TravelTime returns the travel time for a congestion score in [0,100]
// against the default free-flow time.
func TravelTime(score float64) float64 {
	return TravelTimeAt(score, DefaultFreeFlow)
}

// TravelTimeAt returns freeFlow * (1 + 0.15 * (score/20)^4).
// Total and monotonically increasing for all non-negative scores; no
// clamping is applied, so extreme scores yield large but finite times.
func TravelTimeAt(score, freeFlow float64) float64 {
	return freeFlow * (1 + alpha*math.Pow(score/scoreDivisor, beta))
}

// LinkTime returns base * (1 + 0.15 * ratio^4) for a congestion ratio
// nominally in [0,1]. Used with per-link flows for the monetized
// network cost.
func LinkTime(ratio, base float64) float64 {
	return base * (1 + alpha*math.Pow(ratio, beta))
}
