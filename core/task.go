package core

import (
	"context"
)

// Task is the unit of work (Closure)
type Task func(ctx context.Context)

// =============================================================================
// TaskHandle: Single-shot, type-erased callable wrapper
// =============================================================================

// TaskHandle wraps an arbitrary task closure so that heterogeneous work can be
// stored in one homogeneous queue. A handle owns exactly one callable and is
// consumed by its first (and only) invocation.
//
// Handles must not be copied after creation; ownership transfers with the
// value, queue -> executor, and the wrapped closure may itself own single-use
// resources such as result handles.
type TaskHandle struct {
	task Task
}

// NewTaskHandle wraps task in a single-shot handle.
func NewTaskHandle(task Task) TaskHandle {
	if task == nil {
		panic("core: NewTaskHandle called with nil task")
	}
	return TaskHandle{task: task}
}

// Valid reports whether the handle still owns a callable, i.e. it has not
// been invoked yet.
func (h *TaskHandle) Valid() bool {
	return h.task != nil
}

// Invoke runs the wrapped callable and discards it. The callable's panic, if
// any, propagates to the caller; the handle does not catch it.
//
// Invoking a handle twice, or one that was never assigned a callable, is a
// programming error and panics.
func (h *TaskHandle) Invoke(ctx context.Context) {
	task := h.task
	if task == nil {
		panic("core: TaskHandle invoked twice or after move")
	}
	h.task = nil
	task(ctx)
}

// =============================================================================
// Context Helper
// =============================================================================

type executorKeyType struct{}

var executorKey executorKeyType

// GetCurrentExecutor returns the TaskExecutor whose worker goroutine is
// running the task that carries ctx, or nil when ctx does not originate from
// an executor's run loop.
func GetCurrentExecutor(ctx context.Context) *TaskExecutor {
	if v := ctx.Value(executorKey); v != nil {
		return v.(*TaskExecutor)
	}
	return nil
}
