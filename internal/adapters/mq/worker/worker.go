// Package worker consumes queued refresh batches and applies them to
// the snapshot store.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/traffixlab/traffix/internal/adapters/mq/queue"
	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/pkg/logger"
	"github.com/traffixlab/traffix/pkg/metrics"
)

// Batch is what the refresher reads off the queue.
type Batch = model.Batch

// Applier installs a new snapshot and returns its version id.
type Applier interface {
	Replace(ctx context.Context, rows []model.Row) string
}

// Queue defines how the refresher receives batches.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Batch
}

// Worker processes refresh batches until stopped.
type Worker interface {
	// Run starts the consume loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker. Batches already dequeued
	// are applied before it returns.
	Shutdown(ctx context.Context) error
}

// Refresher is the single consumer of the refresh queue. Snapshot
// replacement is whole-store, so batches must apply serially in
// arrival order; one consumer gives that ordering for free.
type Refresher struct {
	queue queue.Queue
	store Applier
	name  string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewRefresher creates a refresher with configuration options.
func NewRefresher(q queue.Queue, store Applier, opts ...Option) *Refresher {
	r := &Refresher{
		queue:    q,
		store:    store,
		name:     "refresher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("refresher"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.name != "refresher" {
		r.logger = r.logger.Named(r.name)
	}

	return r
}

// Run starts the consume loop.
func (r *Refresher) Run(ctx context.Context) {
	defer close(r.done)

	batches := r.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case b, ok := <-batches:
			if !ok {
				return
			}
			if err := r.processBatch(ctx, b); err != nil {
				r.logger.Error(ctx, "error applying batch", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the refresher.
func (r *Refresher) Shutdown(ctx context.Context) error {
	close(r.shutdown)

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processBatch applies a single batch to the store.
func (r *Refresher) processBatch(ctx context.Context, b Batch) error {
	start := time.Now()

	if len(b.Rows) == 0 {
		metrics.RecordErrorByComponent("worker", "empty_batch")
		return fmt.Errorf("batch %s has no rows", b.ID)
	}

	version := r.store.Replace(ctx, b.Rows)

	r.logger.Info(ctx, "snapshot replaced",
		logger.String("batchID", b.ID),
		logger.String("version", version),
		logger.Int("rows", len(b.Rows)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}
