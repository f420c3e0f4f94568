package core

import (
	"context"
	"fmt"
)

// taskPanic carries a panic value captured on the executor goroutine so it
// can be re-raised on the goroutine blocked in Get.
type taskPanic struct {
	value any
	stack []byte
}

func (p *taskPanic) String() string {
	return fmt.Sprintf("task panicked: %v", p.value)
}

// ResultHandle is the receiving end of a one-shot result channel. Exactly one
// value, error or panic flows through it, from the task that resolves it to
// the single caller awaiting it.
type ResultHandle[R any] struct {
	done chan struct{}

	// Written once, before done is closed; read only after done is closed.
	value R
	err   error
	pnc   *taskPanic
}

// NewResultHandle creates an unresolved handle.
func NewResultHandle[R any]() *ResultHandle[R] {
	return &ResultHandle[R]{done: make(chan struct{})}
}

// Done returns a channel that is closed once the handle is resolved.
func (h *ResultHandle[R]) Done() <-chan struct{} {
	return h.done
}

// Get blocks until the task resolves the handle, then returns its result.
// If the task panicked, the panic is re-raised on the calling goroutine, as
// if the failure had occurred there.
func (h *ResultHandle[R]) Get() (R, error) {
	<-h.done
	if h.pnc != nil {
		panic(h.pnc.value)
	}
	return h.value, h.err
}

// GetContext is Get with cancellation. On ctx expiry it returns ctx.Err();
// the task keeps running and the handle may still resolve later.
func (h *ResultHandle[R]) GetContext(ctx context.Context) (R, error) {
	select {
	case <-h.done:
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
	if h.pnc != nil {
		panic(h.pnc.value)
	}
	return h.value, h.err
}

// resolve completes the handle with the task's return values. It must be
// called at most once.
func (h *ResultHandle[R]) resolve(value R, err error) {
	h.value = value
	h.err = err
	close(h.done)
}

// reject completes the handle with a captured panic. It must be called at
// most once.
func (h *ResultHandle[R]) reject(value any, stack []byte) {
	h.pnc = &taskPanic{value: value, stack: stack}
	close(h.done)
}
