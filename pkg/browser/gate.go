package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of simultaneous extractions sharing the one
// browser connection. Waiters are served in arrival order; the weighted
// semaphore guarantees FIFO, which a plain buffered channel does not.
//
// Waiting has no timeout, but the queue itself is bounded: once maxQueue
// callers are already waiting, further acquisitions fail fast with ErrBusy
// instead of accumulating without limit.
type Gate struct {
	sem      *semaphore.Weighted
	max      int64
	maxQueue int64
	inFlight atomic.Int64
	waiting  atomic.Int64
}

// NewGate creates a gate with the given slot capacity and wait-queue cap.
// A maxQueue of zero means unbounded waiting.
func NewGate(max, maxQueue int) *Gate {
	if max < 1 {
		max = 1
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(max)),
		max:      int64(max),
		maxQueue: int64(maxQueue),
	}
}

// Acquire blocks until a slot is granted, the queue is full, or ctx is
// done. The returned Slot must be released exactly once; Release is
// idempotent so it is safe to defer unconditionally.
func (g *Gate) Acquire(ctx context.Context) (*Slot, error) {
	if g.sem.TryAcquire(1) {
		g.inFlight.Add(1)
		return &Slot{gate: g}, nil
	}

	if g.maxQueue > 0 && g.waiting.Load() >= g.maxQueue {
		return nil, fmt.Errorf("%w: %d waiters", ErrBusy, g.maxQueue)
	}

	g.waiting.Add(1)
	defer g.waiting.Add(-1)

	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	g.inFlight.Add(1)
	return &Slot{gate: g}, nil
}

// InFlight returns the number of granted-but-unreleased slots.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Waiting returns the number of callers queued for a slot.
func (g *Gate) Waiting() int {
	return int(g.waiting.Load())
}

// Slot is a concurrency permit granted by a Gate.
type Slot struct {
	gate *Gate
	once sync.Once
}

// Release returns the slot to the gate. Safe to call more than once.
func (s *Slot) Release() {
	s.once.Do(func() {
		s.gate.inFlight.Add(-1)
		s.gate.sem.Release(1)
	})
}
