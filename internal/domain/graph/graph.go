// Package graph builds the weighted directed road network from a
// traffic snapshot under a selectable routing regime.
package graph

import (
	"sort"
	"strings"

	"github.com/traffixlab/traffix/internal/domain/model"
)

// Regime selects how edge weights are derived from observed congestion.
type Regime int

const (
	// Current weights each edge by its raw observed congestion ratio.
	Current Regime = iota
	// Optimized simulates centrally rerouting the most congested links:
	// the top 15% of current rows by congestion (at least one) get their
	// congestion discounted by 15% before weight assignment.
	Optimized
)

// Optimized-regime tuning.
const (
	discountShare  = 0.15
	discountFactor = 0.85
)

// String returns the wire name of the regime.
func (r Regime) String() string {
	if r == Optimized {
		return "optimized"
	}
	return "current"
}

// ParseRegime maps a wire name to a Regime. Unknown or empty input
// falls back to Current.
func ParseRegime(s string) (Regime, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "current":
		return Current, true
	case "optimized":
		return Optimized, true
	default:
		return Current, false
	}
}

// Edge is a directed road segment with its routing weight.
type Edge struct {
	Source     string
	Target     string
	Weight     float64 // post-adjustment congestion ratio
	Speed      float64 // km/h
	Congestion float64 // post-adjustment congestion ratio
}

// DefaultSpeed is assumed when a snapshot row carries no speed.
const DefaultSpeed = 40.0

// Graph is a directed weighted road network keyed by node name, with at
// most one edge per ordered (source, target) pair. Built fresh per
// query and never mutated afterwards.
type Graph struct {
	adjacency map[string][]Edge
	nodes     map[string]struct{}
}

// Build constructs a graph from the current rows of the snapshot under
// the given regime. An empty snapshot yields a valid empty graph.
func Build(snap model.Snapshot, regime Regime) *Graph {
	rows := append(model.Snapshot(nil), snap.Current()...)
	if regime == Optimized {
		discountTop(rows)
	}

	g := &Graph{
		adjacency: make(map[string][]Edge, len(rows)),
		nodes:     make(map[string]struct{}, len(rows)*2),
	}
	for _, r := range rows {
		speed := DefaultSpeed
		if r.Speed != nil {
			speed = *r.Speed
		}
		g.upsert(Edge{
			Source:     r.Source,
			Target:     r.Target,
			Weight:     r.Congestion,
			Speed:      speed,
			Congestion: r.Congestion,
		})
	}
	return g
}

// discountTop applies the optimized-regime discount in place to the top
// max(1, floor(0.15*n)) rows by congestion. The sort is stable so ties
// keep their original snapshot order, keeping the selection
// deterministic.
func discountTop(rows model.Snapshot) {
	if len(rows) == 0 {
		return
	}
	k := len(rows) * 15 / 100
	if k < 1 {
		k = 1
	}
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rows[order[a]].Congestion > rows[order[b]].Congestion
	})
	for _, idx := range order[:k] {
		rows[idx].Congestion *= discountFactor
	}
}

func (g *Graph) upsert(e Edge) {
	g.nodes[e.Source] = struct{}{}
	g.nodes[e.Target] = struct{}{}
	out := g.adjacency[e.Source]
	for i := range out {
		if out[i].Target == e.Target {
			out[i] = e
			return
		}
	}
	g.adjacency[e.Source] = append(out, e)
}

// HasNode reports whether the node appears in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Out returns the outgoing edges of a node in insertion order.
func (g *Graph) Out(name string) []Edge {
	return g.adjacency[name]
}

// Edge returns the edge between an ordered node pair, if present.
func (g *Graph) Edge(source, target string) (Edge, bool) {
	for _, e := range g.adjacency[source] {
		if e.Target == target {
			return e, true
		}
	}
	return Edge{}, false
}

// Nodes returns all node names, sorted.
func (g *Graph) Nodes() []string {
	nodes := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, out := range g.adjacency {
		total += len(out)
	}
	return total
}
