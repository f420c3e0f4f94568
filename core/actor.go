package core

import (
	"context"
)

// Actor gives a type that embeds it a private, exclusive worker goroutine and
// a submission contract, without exposing the queue or executor directly.
//
// The convention: public ("client") methods never touch the actor's data.
// They bind their arguments into a closure and route it through Call or Cast;
// private ("server") methods, which run only on the actor goroutine, are the
// only code that reads or writes the data, and therefore need no locking.
// Server methods can assert the convention with OnActorThread.
//
//	type keyval struct {
//		core.Actor
//		m map[string]string // touched only on the actor goroutine
//	}
//
//	func (kv *keyval) Set(key, val string) { // client API
//		kv.Cast(func(ctx context.Context) { kv.handleSet(ctx, key, val) })
//	}
//
// An actor is running from construction until Stop; Call and Cast after Stop
// are rejected with ErrExecutorStopped.
type Actor struct {
	exec *TaskExecutor
}

// NewActor creates an actor with a default executor and starts its goroutine.
func NewActor() *Actor {
	return &Actor{exec: NewTaskExecutor()}
}

// NewActorWithConfig creates an actor whose executor uses the given
// configuration.
func NewActorWithConfig(config ExecutorConfig) *Actor {
	return &Actor{exec: NewTaskExecutorWithConfig(config)}
}

// OnActorThread reports whether the task carrying ctx is running on this
// actor's goroutine. Server methods use it as a runtime assertion:
//
//	func (kv *keyval) handleSet(ctx context.Context, key, val string) {
//		if !kv.OnActorThread(ctx) {
//			panic("handleSet off the actor goroutine")
//		}
//		kv.m[key] = val
//	}
func (a *Actor) OnActorThread(ctx context.Context) bool {
	return a.exec.OnExecutorThread(ctx)
}

// Call runs task on the actor goroutine and blocks until it completes,
// returning its error. A panic in task is re-raised on the calling goroutine.
func (a *Actor) Call(task func(ctx context.Context) error) error {
	return a.exec.Call(task)
}

// Cast queues task to run on the actor goroutine and returns immediately.
// Failures in task are not reported to the caller.
func (a *Actor) Cast(task Task) {
	a.exec.Cast(task)
}

// Flush blocks until all tasks queued before it have completed.
func (a *Actor) Flush() error {
	return a.exec.Flush()
}

// Stats returns a snapshot of the underlying executor's runtime state.
func (a *Actor) Stats() ExecutorStats {
	return a.exec.Stats()
}

// Stop shuts the actor down: queued tasks drain, then the goroutine exits.
// Must not be called from the actor's own goroutine.
func (a *Actor) Stop() {
	a.exec.Stop()
}

// ActorSubmit queues f on the actor goroutine and returns a one-shot handle
// for its result. Generic results need a free function because Go methods
// cannot introduce type parameters.
func ActorSubmit[R any](a *Actor, f func(ctx context.Context) (R, error)) *ResultHandle[R] {
	return Submit(a.exec, f)
}

// ActorCall runs f on the actor goroutine and blocks for its result. A panic
// in f is re-raised on the calling goroutine.
func ActorCall[R any](a *Actor, f func(ctx context.Context) (R, error)) (R, error) {
	return Call(a.exec, f)
}
