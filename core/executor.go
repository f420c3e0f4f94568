package core

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrExecutorStopped is returned for tasks submitted after Quit or Stop.
var ErrExecutorStopped = errors.New("core: executor stopped")

const rejectReasonShutdown = "shutdown"

// TaskExecutor runs an unbounded stream of tasks to completion, one at a
// time, strictly in FIFO submission order, on a single dedicated goroutine
// that it owns for its entire lifetime.
//
// Because there is exactly one consumer goroutine, all tasks submitted to the
// same executor execute in a single total order with no interleaving. State
// touched only inside tasks therefore needs no locking; this is the property
// the Actor layer is built on.
//
// The zero value is not usable; create executors with NewTaskExecutor or
// NewTaskExecutorWithConfig.
type TaskExecutor struct {
	name  string
	queue *BoundedTaskQueue[TaskHandle]

	quit     atomic.Bool
	stopped  chan struct{}
	stopOnce sync.Once

	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics

	executed atomic.Int64
	panics   atomic.Int64
	rejected atomic.Int64
}

// NewTaskExecutor creates an executor with default configuration and starts
// its worker goroutine.
func NewTaskExecutor() *TaskExecutor {
	return NewTaskExecutorWithConfig(DefaultExecutorConfig())
}

// NewTaskExecutorWithConfig creates an executor with the given configuration
// and starts its worker goroutine. Zero-valued config fields select defaults.
func NewTaskExecutorWithConfig(config ExecutorConfig) *TaskExecutor {
	if config.Name == "" {
		config.Name = "executor-" + gonanoid.Must(6)
	}
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = MaxCapacity
	}
	if config.Logger == nil {
		config.Logger = NewDefaultLogger()
	}
	if config.PanicHandler == nil {
		config.PanicHandler = &DefaultPanicHandler{}
	}
	if config.Metrics == nil {
		config.Metrics = &NilMetrics{}
	}

	e := &TaskExecutor{
		name:         config.Name,
		queue:        NewBoundedTaskQueueWithCapacity[TaskHandle](config.QueueCapacity),
		stopped:      make(chan struct{}),
		logger:       config.Logger,
		panicHandler: config.PanicHandler,
		metrics:      config.Metrics,
	}

	go e.runLoop()

	return e
}

// Name returns the name of the executor.
func (e *TaskExecutor) Name() string {
	return e.name
}

// QueueCapacity returns the capacity of the task queue.
func (e *TaskExecutor) QueueCapacity() int {
	return e.queue.Capacity()
}

// SetQueueCapacity bounds the task queue. When the queue reaches capacity,
// submitters block until the worker catches up, applying backpressure so the
// task backlog cannot grow without bound.
func (e *TaskExecutor) SetQueueCapacity(cap int) {
	e.queue.SetCapacity(cap)
}

// QueueSize returns the number of tasks waiting to run.
func (e *TaskExecutor) QueueSize() int {
	return e.queue.Size()
}

// NumTasks returns the number of accepted tasks that have not finished
// executing, whether still queued or currently running.
func (e *TaskExecutor) NumTasks() int {
	return e.queue.NumTasks()
}

// OnExecutorThread reports whether the task carrying ctx is running on this
// executor's worker goroutine. Actor implementations use it as a runtime
// assertion inside methods that must only run there.
func (e *TaskExecutor) OnExecutorThread(ctx context.Context) bool {
	return GetCurrentExecutor(ctx) == e
}

// IsClosed returns true once Quit or Stop has been called.
func (e *TaskExecutor) IsClosed() bool {
	return e.quit.Load()
}

// Stats returns a snapshot of the executor's runtime state.
func (e *TaskExecutor) Stats() ExecutorStats {
	return ExecutorStats{
		Name:          e.name,
		QueueDepth:    e.queue.Size(),
		QueueCapacity: e.queue.Capacity(),
		Outstanding:   e.queue.NumTasks(),
		Executed:      e.executed.Load(),
		Panics:        e.panics.Load(),
		Rejected:      e.rejected.Load(),
		Closed:        e.quit.Load(),
	}
}

// =============================================================================
// Submission
// =============================================================================

// post enqueues a handle unless the executor has quit. The enqueue blocks
// under backpressure when the queue is at capacity.
func (e *TaskExecutor) post(handle TaskHandle) bool {
	if e.quit.Load() {
		e.rejected.Add(1)
		e.metrics.RecordTaskRejected(e.name, rejectReasonShutdown)
		e.logger.Warn("task rejected after shutdown", F("executor", e.name))
		return false
	}
	e.queue.Put(handle)
	e.metrics.RecordQueueDepth(e.name, e.queue.Size())
	return true
}

// Cast submits a task for asynchronous execution, fire-and-forget. No result
// flows back: if the task panics, the failure is recovered at the worker loop
// and reported only to the panic handler and metrics. Tasks cast after Quit
// are dropped.
func (e *TaskExecutor) Cast(task Task) {
	e.post(NewTaskHandle(task))
}

// Call submits a task and blocks until it has executed on the worker
// goroutine, returning the task's error. If the task panics, the panic is
// re-raised on the calling goroutine.
func (e *TaskExecutor) Call(task func(ctx context.Context) error) error {
	_, err := Call(e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, task(ctx)
	})
	return err
}

// Flush blocks until every task submitted before it has finished executing.
// Because tasks run strictly in order, the completion of a no-op barrier task
// implies the completion of everything queued ahead of it. Tasks submitted
// concurrently after Flush was issued are not covered by the guarantee.
func (e *TaskExecutor) Flush() error {
	return e.Call(func(ctx context.Context) error { return nil })
}

// Wait blocks until every accepted task has finished executing, including a
// task the worker has already dequeued but not completed. Tasks submitted by
// other goroutines while waiting extend the wait.
func (e *TaskExecutor) Wait() {
	e.queue.Wait()
}

// WaitContext is Wait with cancellation.
func (e *TaskExecutor) WaitContext(ctx context.Context) error {
	return e.queue.WaitContext(ctx)
}

// Submit wraps f in a task that resolves a one-shot result handle, enqueues
// it, and returns the handle immediately; f itself never runs on the calling
// goroutine. The enqueue blocks under backpressure when the queue is at
// capacity. If the executor has quit, the returned handle is already resolved
// with ErrExecutorStopped.
func Submit[R any](e *TaskExecutor, f func(ctx context.Context) (R, error)) *ResultHandle[R] {
	handle := NewResultHandle[R]()

	accepted := e.post(NewTaskHandle(func(ctx context.Context) {
		defer func() {
			if r := recover(); r != nil {
				handle.reject(r, debug.Stack())
				// Re-raise so the run loop accounts for the panic.
				panic(r)
			}
		}()
		handle.resolve(f(ctx))
	}))

	if !accepted {
		var zero R
		handle.resolve(zero, ErrExecutorStopped)
	}
	return handle
}

// Call submits f and blocks until it has executed on the worker goroutine,
// returning its value and error. A panic raised by f is re-raised on the
// calling goroutine.
func Call[R any](e *TaskExecutor, f func(ctx context.Context) (R, error)) (R, error) {
	return Submit(e, f).Get()
}

// =============================================================================
// Shutdown
// =============================================================================

// Quit requests that the worker goroutine exit once the queue has drained.
// Tasks already queued still execute; tasks submitted afterwards are
// rejected. A no-op task is enqueued so the worker observes the flag promptly
// even while blocked waiting for work.
func (e *TaskExecutor) Quit() {
	if e.quit.Swap(true) {
		return
	}
	e.logger.Debug("executor quitting", F("executor", e.name))
	e.queue.Put(NewTaskHandle(func(ctx context.Context) {}))
}

// Stop calls Quit and blocks until the worker goroutine has drained the
// queue and exited. No task is left running or abandoned mid-flight.
//
// Stop must not be called from a task running on this executor; the worker
// cannot join itself.
func (e *TaskExecutor) Stop() {
	e.stopOnce.Do(func() {
		e.Quit()
		<-e.stopped
		e.logger.Debug("executor stopped",
			F("executor", e.name),
			F("executed", e.executed.Load()))
	})
}

// =============================================================================
// Worker loop
// =============================================================================

// runLoop executes on the dedicated worker goroutine for the lifetime of the
// executor. It exits only when quit is set and the queue is empty, so work
// queued before Quit always drains.
func (e *TaskExecutor) runLoop() {
	defer close(e.stopped)

	runCtx := context.WithValue(context.Background(), executorKey, e)

	for {
		if e.quit.Load() && e.queue.Empty() {
			return
		}
		handle := e.queue.Get()
		e.runOne(runCtx, &handle)
	}
}

// runOne invokes a single handle, recovering any panic at this boundary.
// Call/Submit tasks have already captured the failure into their result
// handle by the time it reaches here; for Cast tasks this recovery is where
// the failure ends.
func (e *TaskExecutor) runOne(ctx context.Context, handle *TaskHandle) {
	start := time.Now()
	defer func() {
		e.queue.TaskDone()
		if r := recover(); r != nil {
			e.panics.Add(1)
			e.metrics.RecordTaskPanic(e.name, r)
			e.panicHandler.HandlePanic(ctx, e.name, r, debug.Stack())
			return
		}
		e.metrics.RecordTaskDuration(e.name, time.Since(start))
	}()

	handle.Invoke(ctx)
	e.executed.Add(1)
}
