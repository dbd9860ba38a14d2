// Package model contains domain models passed between layers.
package model

import (
	"sort"
	"time"
)

// Row is one observed directed road segment at one point in time.
// Congestion is a dimensionless load ratio, nominally in [0,1]; it may
// exceed 1 transiently during incidents. Speed and Flow are optional in
// the snapshot schema and stay nil when the provider omits them.
type Row struct {
	Source     string    // intersection/area the segment leaves
	Target     string    // intersection/area the segment enters
	Congestion float64   // load ratio, 0 = free flow
	Speed      *float64  // km/h, nil when unobserved
	Flow       *float64  // vehicles/h, nil when unobserved
	Timestamp  time.Time // zero when the provider sends no timestamps
}

// Snapshot is an ordered sequence of rows, possibly spanning several
// observation timestamps. Only the rows at the latest timestamp are
// considered current.
type Snapshot []Row

// Batch is a snapshot refresh submitted by an ingestion client.
// ID makes resubmission idempotent.
type Batch struct {
	ID   string
	Rows []Row
}

// Current returns the rows at the maximum timestamp. When no row
// carries a timestamp the whole snapshot is current.
func (s Snapshot) Current() Snapshot {
	var latest time.Time
	for _, r := range s {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	if latest.IsZero() {
		return s
	}
	out := make(Snapshot, 0, len(s))
	for _, r := range s {
		if r.Timestamp.Equal(latest) {
			out = append(out, r)
		}
	}
	return out
}

// Nodes returns the sorted union of sources and targets across the
// current rows. A node never appears without at least one incident
// segment.
func (s Snapshot) Nodes() []string {
	seen := make(map[string]struct{})
	for _, r := range s.Current() {
		seen[r.Source] = struct{}{}
		seen[r.Target] = struct{}{}
	}
	nodes := make([]string, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}
