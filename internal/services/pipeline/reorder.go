package pipeline

import (
	"sync"

	"anomserver/internal/model"
)

// frameResult is one frame's inference output travelling from the worker
// pool to the ordered consumer.
type frameResult struct {
	frame      *Frame
	detections []model.Detection
	motion     model.MotionStats
}

// reorderBuffer restores frame-index order after concurrent worker
// dispatch. Put blocks while a result is more than capacity frames ahead of
// the next index to release, bounding memory; Next releases results in
// strict index order. Scores and events downstream are therefore
// deterministic regardless of worker completion order.
type reorderBuffer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[int]*frameResult
	next    int
	cap     int
	closed  bool
}

func newReorderBuffer(capacity int) *reorderBuffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &reorderBuffer{
		pending: make(map[int]*frameResult),
		cap:     capacity,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Put stores a completed result. Blocks while the result is too far ahead
// of the consumer; the result for the next expected index never blocks.
func (b *reorderBuffer) Put(r *frameResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.closed && r.frame.Index >= b.next+b.cap {
		b.cond.Wait()
	}
	if b.closed {
		return
	}
	b.pending[r.frame.Index] = r
	b.cond.Broadcast()
}

// Next returns the result for the next frame index, blocking until it
// arrives. Returns nil after Close once no in-order result remains.
func (b *reorderBuffer) Next() *frameResult {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if r, ok := b.pending[b.next]; ok {
			delete(b.pending, b.next)
			b.next++
			b.cond.Broadcast()
			return r
		}
		if b.closed {
			return nil
		}
		b.cond.Wait()
	}
}

// Close wakes all waiters; Next drains nothing past the first gap.
func (b *reorderBuffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cond.Broadcast()
}
