package actor

import "github.com/coopergo/go-actor/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the actor package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// TaskHandle is a single-shot, type-erased wrapper around a task
type TaskHandle = core.TaskHandle

// Actor is the embeddable base that gives a type its own worker goroutine
type Actor = core.Actor

// TaskExecutor runs tasks sequentially on one dedicated goroutine
type TaskExecutor = core.TaskExecutor

// ExecutorConfig configures a TaskExecutor
type ExecutorConfig = core.ExecutorConfig

// IntervalTimer invokes a callback on a one-shot or periodic schedule
type IntervalTimer = core.IntervalTimer

// TimerConfig configures an IntervalTimer
type TimerConfig = core.TimerConfig

// ResultHandle is the receiving end of a one-shot result channel
type ResultHandle[R any] = core.ResultHandle[R]

// ErrExecutorStopped is returned for tasks submitted after shutdown
var ErrExecutorStopped = core.ErrExecutorStopped

// Convenience constructors
var (
	New                = core.NewActor
	NewWithConfig      = core.NewActorWithConfig
	NewTaskExecutor    = core.NewTaskExecutor
	NewIntervalTimer   = core.NewIntervalTimer
	GetCurrentExecutor = core.GetCurrentExecutor
)

// NewExecutorWithConfig creates a TaskExecutor with the given configuration.
// This is re-exported for users who want bounded queues or custom handlers.
func NewExecutorWithConfig(config ExecutorConfig) *TaskExecutor {
	return core.NewTaskExecutorWithConfig(config)
}
