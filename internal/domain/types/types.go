// Package types contains the read shapes returned across the API
// boundary.
package types

// PathEdge is one traversed segment of a routed path.
type PathEdge struct {
	Source            string  `json:"source"`
	Target            string  `json:"target"`
	CongestionPercent float64 `json:"congestion_percent"`
	SpeedKmh          float64 `json:"speed_kmh"`
}

// Path mirrors a shortest-path query result.
type Path struct {
	Nodes       []string   `json:"nodes"`
	Edges       []PathEdge `json:"edges"`
	TotalWeight float64    `json:"total_weight"`
	Regime      string     `json:"regime"`
}

// GraphEdge is one snapshot row as shown on the dashboard map.
type GraphEdge struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Congestion float64 `json:"congestion"` // percent
	SpeedKmh   float64 `json:"speed_kmh,omitempty"`
	Flow       float64 `json:"flow,omitempty"`
}

// Metrics is the unitless network efficiency report.
type Metrics struct {
	PriceOfAnarchy float64 `json:"price_of_anarchy"`
	NashCost       float64 `json:"nash_cost"`
	OptimalCost    float64 `json:"optimal_cost"`
	Status         string  `json:"status"`
}

// Bottleneck identifies the most congested edge of the snapshot.
type Bottleneck struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Congestion float64 `json:"congestion"` // percent
}

// StatusReport is the full dashboard payload.
type StatusReport struct {
	GraphData  []GraphEdge `json:"graph_data"`
	Metrics    Metrics     `json:"metrics"`
	Bottleneck *Bottleneck `json:"bottleneck,omitempty"`
}

// NetworkCost is the currency-denominated efficiency report.
type NetworkCost struct {
	MonetizedNashCost    float64 `json:"monetized_nash_cost"`
	MonetizedOptimalCost float64 `json:"monetized_optimal_cost"`
	PotentialSavings     float64 `json:"potential_savings"`
	TotalThroughput      float64 `json:"total_throughput"`
	ValueOfTimePerHour   float64 `json:"value_of_time_per_hour"`
}

// Forecast is a congestion prediction for a hypothetical segment.
type Forecast struct {
	Congestion float64 `json:"congestion"` // percent
	SpeedKmh   float64 `json:"speed"`
	Confidence string  `json:"confidence"`
	Degraded   bool    `json:"degraded"`
	Reason     string  `json:"reason,omitempty"`
}

// Insight is the answer from the conversational analysis service.
type Insight struct {
	Insight string `json:"insight"`
	Format  string `json:"format"`
}
