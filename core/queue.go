package core

import (
	"context"
	"math"
	"sync"
	"time"
)

// MaxCapacity is the capacity of a queue that is unbounded for any practical
// purpose; it is the default when no capacity is given.
const MaxCapacity = math.MaxInt

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// BoundedTaskQueue is a capacity-limited, thread-safe FIFO with blocking,
// non-blocking and bounded-blocking put/get, plus an outstanding-task counter
// that is decoupled from removal: Put increments it, but only an explicit
// TaskDone call decrements it. A consumer can remove an item, process it for
// an arbitrary duration, and mark it done later; Wait blocks producers until
// every inserted item has been both removed and completed. This mirrors the
// classic producer/consumer join pattern from Python's queue.Queue.
//
// Items are retrieved in exactly the order they were successfully inserted,
// regardless of which goroutine inserted them.
type BoundedTaskQueue[T any] struct {
	mu     sync.Mutex
	items  []T
	cap    int
	nTasks int

	// Condition channels, broadcast by close-and-replace. Waiters grab the
	// current channel under mu, release mu, block on the channel, then
	// re-check their predicate under mu.
	notEmpty chan struct{} // closed when an item lands in an empty queue
	notFull  chan struct{} // closed when space opens in a full queue
	allDone  chan struct{} // closed when the outstanding count reaches zero
}

// NewBoundedTaskQueue creates a queue with the largest supported capacity.
func NewBoundedTaskQueue[T any]() *BoundedTaskQueue[T] {
	return NewBoundedTaskQueueWithCapacity[T](MaxCapacity)
}

// NewBoundedTaskQueueWithCapacity creates a queue holding at most cap items.
func NewBoundedTaskQueueWithCapacity[T any](cap int) *BoundedTaskQueue[T] {
	if cap < 1 {
		panic("core: queue capacity must be at least 1")
	}
	return &BoundedTaskQueue[T]{
		items:    make([]T, 0, defaultQueueCap),
		cap:      cap,
		notEmpty: make(chan struct{}),
		notFull:  make(chan struct{}),
		allDone:  make(chan struct{}),
	}
}

// =============================================================================
// Put variants
// =============================================================================

// Put inserts v at the tail, blocking while the queue is at capacity.
func (q *BoundedTaskQueue[T]) Put(v T) {
	q.mu.Lock()
	for len(q.items) >= q.cap {
		ch := q.notFull
		q.mu.Unlock()
		<-ch
		q.mu.Lock()
	}
	q.putLocked(v)
	q.mu.Unlock()
}

// TryPut inserts v if there is room, without blocking. It returns false when
// the queue is at capacity.
func (q *BoundedTaskQueue[T]) TryPut(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.cap {
		return false
	}
	q.putLocked(v)
	return true
}

// TryPutFor inserts v, blocking at most the given duration for space.
// It returns false on timeout, without inserting.
func (q *BoundedTaskQueue[T]) TryPutFor(v T, timeout time.Duration) bool {
	return q.TryPutUntil(v, time.Now().Add(timeout))
}

// TryPutUntil inserts v, blocking at most until the given deadline for space.
// It returns false on timeout, without inserting.
func (q *BoundedTaskQueue[T]) TryPutUntil(v T, deadline time.Time) bool {
	q.mu.Lock()
	for len(q.items) >= q.cap {
		ch := q.notFull
		q.mu.Unlock()
		if !waitOn(ch, deadline) {
			return false
		}
		q.mu.Lock()
	}
	q.putLocked(v)
	q.mu.Unlock()
	return true
}

// putLocked is the unconditional insert. The caller holds mu and has checked
// that there is room.
func (q *BoundedTaskQueue[T]) putLocked(v T) {
	wasEmpty := len(q.items) == 0
	q.items = append(q.items, v)
	q.nTasks++
	if wasEmpty {
		close(q.notEmpty)
		q.notEmpty = make(chan struct{})
	}
}

// =============================================================================
// Get variants
// =============================================================================

// Get removes and returns the head element, blocking while the queue is
// empty. It does not change the outstanding-task count.
func (q *BoundedTaskQueue[T]) Get() T {
	q.mu.Lock()
	for len(q.items) == 0 {
		ch := q.notEmpty
		q.mu.Unlock()
		<-ch
		q.mu.Lock()
	}
	v := q.getLocked()
	q.mu.Unlock()
	return v
}

// TryGet removes and returns the head element if one is present, without
// blocking. It returns false when the queue is empty.
func (q *BoundedTaskQueue[T]) TryGet() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.getLocked(), true
}

// TryGetFor removes the head element, blocking at most the given duration for
// one to arrive. It returns false on timeout.
func (q *BoundedTaskQueue[T]) TryGetFor(timeout time.Duration) (T, bool) {
	return q.TryGetUntil(time.Now().Add(timeout))
}

// TryGetUntil removes the head element, blocking at most until the given
// deadline for one to arrive. It returns false on timeout.
func (q *BoundedTaskQueue[T]) TryGetUntil(deadline time.Time) (T, bool) {
	q.mu.Lock()
	for len(q.items) == 0 {
		ch := q.notEmpty
		q.mu.Unlock()
		if !waitOn(ch, deadline) {
			var zero T
			return zero, false
		}
		q.mu.Lock()
	}
	v := q.getLocked()
	q.mu.Unlock()
	return v, true
}

// getLocked is the unconditional remove. The caller holds mu and has checked
// that at least one item is present.
func (q *BoundedTaskQueue[T]) getLocked() T {
	wasFull := len(q.items) >= q.cap

	v := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	q.maybeCompactLocked()

	if wasFull {
		close(q.notFull)
		q.notFull = make(chan struct{})
	}
	return v
}

func (q *BoundedTaskQueue[T]) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]T, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]T, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

// =============================================================================
// Task accounting
// =============================================================================

// TaskDone marks one removed item as fully processed, decrementing the
// outstanding-task count. Calling it when the count is already zero is a
// no-op, not an error; callers that cannot track exact counts stay simple.
// When the count reaches zero every goroutine blocked in Wait is released.
func (q *BoundedTaskQueue[T]) TaskDone() {
	q.mu.Lock()
	if q.nTasks == 0 {
		q.mu.Unlock()
		return
	}
	q.nTasks--
	if q.nTasks == 0 {
		close(q.allDone)
		q.allDone = make(chan struct{})
	}
	q.mu.Unlock()
}

// Wait blocks until the outstanding-task count is zero. Items inserted by
// other goroutines while the caller is blocked extend the wait.
func (q *BoundedTaskQueue[T]) Wait() {
	q.mu.Lock()
	for q.nTasks != 0 {
		ch := q.allDone
		q.mu.Unlock()
		<-ch
		q.mu.Lock()
	}
	q.mu.Unlock()
}

// WaitContext is Wait with cancellation. It returns ctx.Err() if ctx is done
// before the outstanding-task count reaches zero.
func (q *BoundedTaskQueue[T]) WaitContext(ctx context.Context) error {
	q.mu.Lock()
	for q.nTasks != 0 {
		ch := q.allDone
		q.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		q.mu.Lock()
	}
	q.mu.Unlock()
	return nil
}

// =============================================================================
// Accessors
// =============================================================================

// Size returns the number of items currently in the queue.
func (q *BoundedTaskQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue holds no items.
func (q *BoundedTaskQueue[T]) Empty() bool {
	return q.Size() == 0
}

// NumTasks returns the outstanding-task count: items inserted but not yet
// marked done, whether or not they have been dequeued.
func (q *BoundedTaskQueue[T]) NumTasks() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.nTasks
}

// Capacity returns the maximum number of items the queue will hold.
func (q *BoundedTaskQueue[T]) Capacity() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cap
}

// SetCapacity changes the capacity bound. The capacity may be set below the
// current size; in that case Put blocks until enough items are removed to
// bring the size under the new bound.
func (q *BoundedTaskQueue[T]) SetCapacity(cap int) {
	if cap < 1 {
		panic("core: queue capacity must be at least 1")
	}
	q.mu.Lock()
	grew := cap > q.cap
	q.cap = cap
	if grew && len(q.items) < q.cap {
		// Space may have opened for blocked producers.
		close(q.notFull)
		q.notFull = make(chan struct{})
	}
	q.mu.Unlock()
}

// waitOn blocks on ch until it is closed or the deadline passes. It returns
// false on timeout.
func waitOn(ch <-chan struct{}, deadline time.Time) bool {
	wait := time.Until(deadline)
	if wait <= 0 {
		return false
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
