// Package actor provides low-level concurrency primitives for building
// actor-style objects: single-goroutine, sequentially-consistent units of
// execution that any number of goroutines can submit work to without
// explicit locking.
//
// # Quick Start
//
// Embed core.Actor in a type and route every access to its state through
// Call or Cast:
//
//	type counter struct {
//		core.Actor
//		n int // touched only on the actor goroutine
//	}
//
//	func newCounter() *counter {
//		return &counter{Actor: *core.NewActor()}
//	}
//
//	func (c *counter) Incr() {
//		c.Cast(func(ctx context.Context) { c.n++ })
//	}
//
//	func (c *counter) Value() (int, error) {
//		return core.ActorCall(&c.Actor, func(ctx context.Context) (int, error) {
//			return c.n, nil
//		})
//	}
//
// # Key Concepts
//
// TaskExecutor: one dedicated goroutine draining a bounded FIFO task queue.
// All tasks submitted to the same executor execute in a single total order,
// which is why actor state needs no locks.
//
// Call vs Cast: Call blocks for the task's result and sees its failure; Cast
// is fire-and-forget, and failures are reported only to the panic handler.
//
// Backpressure: an executor's queue capacity can be bounded; submitters then
// block when the worker falls behind instead of growing the backlog without
// limit.
//
// IntervalTimer: a standalone scheduling primitive that invokes a callback
// one-shot or periodically, with drift correction, from its own goroutine.
// Actors commonly use it to Cast themselves periodic work.
//
// # Shutdown
//
// Stop drains queued tasks before the worker goroutine exits; no accepted
// task is dropped. Submissions after Quit/Stop are rejected with
// ErrExecutorStopped.
package actor
