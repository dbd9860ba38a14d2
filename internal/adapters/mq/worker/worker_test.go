package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/traffixlab/traffix/internal/adapters/mq/queue"
	"github.com/traffixlab/traffix/internal/domain/model"
	"github.com/traffixlab/traffix/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeStore records Replace calls in order.
type fakeStore struct {
	mu       sync.Mutex
	applied  [][]model.Row
	versions int
}

func (s *fakeStore) Replace(_ context.Context, rows []model.Row) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]model.Row, len(rows))
	copy(stored, rows)
	s.applied = append(s.applied, stored)
	s.versions++
	return fmt.Sprintf("v%d", s.versions)
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

func (s *fakeStore) last() []model.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.applied) == 0 {
		return nil
	}
	return s.applied[len(s.applied)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met within timeout")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRefresher_AppliesBatchesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	store := &fakeStore{}
	r := NewRefresher(q, store, WithName("test-refresher"))

	go r.Run(ctx)

	for i := 1; i <= 3; i++ {
		ok := q.Enqueue(ctx, model.Batch{
			ID:   fmt.Sprintf("b%d", i),
			Rows: []model.Row{{Source: "A", Target: "B", Congestion: float64(i) / 10}},
		})
		if !ok {
			t.Fatalf("enqueue %d failed", i)
		}
	}

	waitFor(t, func() bool { return store.count() == 3 })

	last := store.last()
	if len(last) != 1 || last[0].Congestion != 0.3 {
		t.Errorf("expected last applied batch to carry congestion 0.3, got %+v", last)
	}
}

func TestRefresher_SkipsEmptyBatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	store := &fakeStore{}
	r := NewRefresher(q, store)

	go r.Run(ctx)

	q.Enqueue(ctx, model.Batch{ID: "empty"})
	q.Enqueue(ctx, model.Batch{
		ID:   "full",
		Rows: []model.Row{{Source: "A", Target: "B", Congestion: 0.5}},
	})

	waitFor(t, func() bool { return store.count() == 1 })

	if store.last()[0].Congestion != 0.5 {
		t.Errorf("expected the non-empty batch to be applied, got %+v", store.last())
	}
}

func TestRefresher_Shutdown(t *testing.T) {
	ctx := context.Background()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	store := &fakeStore{}
	r := NewRefresher(q, store)

	go r.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := r.Shutdown(shutdownCtx); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}
}

func TestRefresher_StopsWhenQueueCloses(t *testing.T) {
	ctx := context.Background()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	store := &fakeStore{}
	r := NewRefresher(q, store)

	go r.Run(ctx)

	if err := q.Close(); err != nil {
		t.Fatalf("queue close failed: %v", err)
	}

	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop after queue close")
	}
}
