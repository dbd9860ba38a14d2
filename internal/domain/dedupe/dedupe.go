// Package dedupe tracks already-seen snapshot batch ids so resubmitted
// refreshes are idempotent.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen batch ids to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so the batch can be retried, e.g. after the
	// refresh queue rejected it under backpressure.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of ids currently tracked.
	Size() int64
}

const defaultMaxSize = 10_000

// inMemoryDeduper keeps ids in a map plus a FIFO ring of insertion
// order. When the cache is full the oldest id is evicted first; stale
// batch ids stop mattering once newer snapshots have replaced them.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	head    int // next eviction slot
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper with configuration
// options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	if d.maxSize < 1 {
		d.maxSize = defaultMaxSize
	}
	d.seen = make(map[string]struct{}, d.maxSize)
	d.ring = make([]string, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if evicted := d.ring[d.head]; evicted != "" {
		delete(d.seen, evicted)
		d.size.Add(-1)
	}
	d.ring[d.head] = id
	d.head = (d.head + 1) % d.maxSize
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)
	// The map is the source of truth for membership; clearing the ring
	// slot just frees it for reuse before the cursor wraps.
	for i := range d.ring {
		if d.ring[i] == id {
			d.ring[i] = ""
			break
		}
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
