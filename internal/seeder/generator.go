package seeder

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/traffixlab/traffix/pkg/logger"
)

// Congestion distribution ranges. Most segments flow freely, a band sits
// in the middle, and a small share is jammed, which gives the efficiency
// report something to flag.
const (
	freeFlowMax   = 0.3
	midBandMin    = 0.3
	midBandRange  = 0.4
	jamMin        = 0.7
	jamRange      = 0.35
	freeFlowShare = 6 // out of 10
	midBandShare  = 3 // out of 10

	baseSpeedKmh  = 60.0
	minSpeedKmh   = 10.0
	speedDragCoef = 0.7

	flowMin   = 200.0
	flowRange = 1800.0
)

// generate builds a random connected network of road segments. Nodes are
// named after city intersections so routes read naturally in demos.
func generate(ctx context.Context, config *Config, stats *Stats) []Segment {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // not used for security

	logger.Get().Info(ctx, "generating traffic snapshot",
		logger.Int("segments", config.Segments),
		logger.Int("nodes", config.Nodes),
		logger.Any("seed", seed))

	nodeCount := config.Nodes
	if nodeCount < 2 {
		nodeCount = 2
	}
	nodes := nodeNames(nodeCount)
	now := time.Now().UTC().Format(time.RFC3339)

	// A directed network has at most n*(n-1) distinct segments.
	want := config.Segments
	if limit := nodeCount * (nodeCount - 1); want > limit {
		want = limit
	}

	segments := make([]Segment, 0, want)
	used := make(map[string]struct{}, want)

	// A ring first, so every node is reachable.
	for i := 0; i < len(nodes) && len(segments) < want; i++ {
		source := nodes[i]
		target := nodes[(i+1)%len(nodes)]
		segments = append(segments, newSegment(rng, source, target, now))
		used[source+">"+target] = struct{}{}
	}

	// Random chords for the rest, skipping duplicates and self-loops.
	for len(segments) < want {
		source := nodes[rng.Intn(len(nodes))]
		target := nodes[rng.Intn(len(nodes))]
		if source == target {
			continue
		}
		key := source + ">" + target
		if _, ok := used[key]; ok {
			continue
		}
		used[key] = struct{}{}
		segments = append(segments, newSegment(rng, source, target, now))
	}

	stats.SegmentsGenerated = len(segments)
	return segments
}

// newSegment draws one segment with congestion from the three-band
// distribution and speed/flow consistent with it.
func newSegment(rng *rand.Rand, source, target, ts string) Segment {
	var congestion float64
	switch band := rng.Intn(10); {
	case band < freeFlowShare:
		congestion = rng.Float64() * freeFlowMax
	case band < freeFlowShare+midBandShare:
		congestion = midBandMin + rng.Float64()*midBandRange
	default:
		congestion = jamMin + rng.Float64()*jamRange
	}

	speed := baseSpeedKmh * (1 - congestion*speedDragCoef)
	if speed < minSpeedKmh {
		speed = minSpeedKmh
	}

	return Segment{
		Source:     source,
		Target:     target,
		Congestion: round3(congestion),
		Speed:      round3(speed),
		Flow:       round3(flowMin + rng.Float64()*flowRange),
		Timestamp:  ts,
	}
}

// nodeNames yields Downtown, Airport, ... then District-9, District-10
// once the fixed list runs out.
func nodeNames(n int) []string {
	fixed := []string{
		"Downtown", "Airport", "Harbor", "University", "Stadium",
		"CentralPark", "OldTown", "TechPark", "Riverside", "Hillside",
	}
	if n <= len(fixed) {
		return fixed[:n]
	}
	names := make([]string, 0, n)
	names = append(names, fixed...)
	for i := len(fixed); i < n; i++ {
		names = append(names, fmt.Sprintf("District-%d", i-len(fixed)+1))
	}
	return names
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}
