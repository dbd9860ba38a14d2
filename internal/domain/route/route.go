// Package route runs shortest-path queries over a built road network
// and reconstructs edge-level detail along the winning path.
package route

import (
	"container/heap"
	"fmt"

	"github.com/traffixlab/traffix/internal/domain/graph"
)

// Step is one traversed segment of a path.
type Step struct {
	Source            string
	Target            string
	CongestionPercent float64
	Speed             float64
}

// Path is the result of a shortest-path query.
type Path struct {
	Nodes       []string
	Steps       []Step
	TotalWeight float64
}

// ShortestPath returns the minimum-total-weight directed path between
// source and target. Weights are non-negative by construction, so plain
// Dijkstra suffices. Ties between equal-cost paths resolve by insertion
// order into the frontier, which is deterministic for identical input.
func ShortestPath(g *graph.Graph, source, target string) (Path, error) {
	if !g.HasNode(source) {
		return Path{}, fmt.Errorf("%w: %s", ErrNodeNotFound, source)
	}
	if !g.HasNode(target) {
		return Path{}, fmt.Errorf("%w: %s", ErrNodeNotFound, target)
	}

	dist := map[string]float64{source: 0}
	prev := make(map[string]string)
	visited := make(map[string]bool)

	pq := &frontier{}
	heap.Init(pq)
	pq.push(source, 0)

	for pq.Len() > 0 {
		u := pq.pop()
		if visited[u] {
			continue
		}
		visited[u] = true
		if u == target {
			break
		}
		for _, e := range g.Out(u) {
			if visited[e.Target] {
				continue
			}
			alt := dist[u] + e.Weight
			if d, seen := dist[e.Target]; !seen || alt < d {
				dist[e.Target] = alt
				prev[e.Target] = u
				pq.push(e.Target, alt)
			}
		}
	}

	if !visited[target] {
		return Path{}, fmt.Errorf("%w: %s -> %s", ErrNoRoute, source, target)
	}

	nodes := []string{target}
	for cur := target; cur != source; {
		cur = prev[cur]
		nodes = append(nodes, cur)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	steps := make([]Step, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		e, _ := g.Edge(nodes[i], nodes[i+1])
		steps = append(steps, Step{
			Source:            e.Source,
			Target:            e.Target,
			CongestionPercent: e.Weight * 100,
			Speed:             e.Speed,
		})
	}

	return Path{Nodes: nodes, Steps: steps, TotalWeight: dist[target]}, nil
}

// frontier is a min-heap of nodes keyed by tentative distance. seq
// breaks distance ties by insertion order so the pop order is stable.
type frontier struct {
	items []frontierItem
	next  int
}

type frontierItem struct {
	node string
	dist float64
	seq  int
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].dist != f.items[j].dist {
		return f.items[i].dist < f.items[j].dist
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) { f.items = append(f.items, x.(frontierItem)) }

func (f *frontier) Pop() any {
	last := len(f.items) - 1
	it := f.items[last]
	f.items = f.items[:last]
	return it
}

func (f *frontier) push(node string, dist float64) {
	heap.Push(f, frontierItem{node: node, dist: dist, seq: f.next})
	f.next++
}

func (f *frontier) pop() string {
	return heap.Pop(f).(frontierItem).node
}
