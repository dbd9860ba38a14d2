// Package dedupe tracks already-seen snapshot batch ids so resubmitted
// refreshes are idempotent.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds the number of batch ids kept in memory. Oldest
// ids are evicted first once the bound is reached.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}
