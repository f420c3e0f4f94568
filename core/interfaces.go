package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution on an executor
// or timer goroutine. This allows custom panic handling, logging, and
// recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context from the panicked task (may contain executor info)
	// - executorName: The name of the executor where the panic occurred
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, executorName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, executorName string, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Executor %s] Panic: %v\nStack trace:\n%s",
		executorName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution
// performance.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(executorName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(executorName string, panicInfo any)

	// RecordQueueDepth records the current task queue depth.
	// This is called after each enqueue and dequeue.
	RecordQueueDepth(executorName string, depth int)

	// RecordTaskRejected records that a task was rejected (e.g., submitted
	// after shutdown).
	RecordTaskRejected(executorName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(executorName string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(executorName string, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(executorName string, depth int) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(executorName string, reason string) {}

// =============================================================================
// ExecutorConfig: Configuration for TaskExecutor
// =============================================================================

// ExecutorConfig holds configuration options for a TaskExecutor.
// All fields are optional; zero values select defaults.
type ExecutorConfig struct {
	// Name identifies the executor in logs and metrics. Defaults to a
	// generated id.
	Name string

	// QueueCapacity bounds the task queue, applying backpressure to
	// submitters when the executor falls behind. Defaults to MaxCapacity
	// (effectively unbounded).
	QueueCapacity int

	// Logger receives lifecycle events. Defaults to NewDefaultLogger().
	Logger Logger

	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record task execution metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultExecutorConfig returns a config with default handlers.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		QueueCapacity: MaxCapacity,
		Logger:        NewDefaultLogger(),
		PanicHandler:  &DefaultPanicHandler{},
		Metrics:       &NilMetrics{},
	}
}
