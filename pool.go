package actor

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/coopergo/go-actor/core"
)

// WorkerPool manages a fixed set of task executors usable as a shared pool of
// worker goroutines. It is a convenience for fire-and-forget work that does
// not need its own dedicated executor; submissions are spread over the
// workers round-robin.
//
// The pool gives no cross-worker ordering guarantee. Work that must be
// serialized belongs on a single executor or an Actor.
type WorkerPool struct {
	id       string
	workers  []*core.TaskExecutor
	next     atomic.Uint64
	stopOnce sync.Once
	stopped  atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers, each backed
// by its own dedicated goroutine. An empty id gets a generated one; workers
// must be at least 1.
func NewWorkerPool(id string, workers int) *WorkerPool {
	if id == "" {
		id = "pool-" + gonanoid.Must(6)
	}
	if workers < 1 {
		panic("actor: pool needs at least 1 worker")
	}

	p := &WorkerPool{id: id}
	for i := 0; i < workers; i++ {
		p.workers = append(p.workers, core.NewTaskExecutorWithConfig(core.ExecutorConfig{
			Name: fmt.Sprintf("%s-worker-%d", id, i),
		}))
	}
	return p
}

// ID returns the ID of the pool.
func (p *WorkerPool) ID() string {
	return p.id
}

// WorkerCount returns the number of workers.
func (p *WorkerPool) WorkerCount() int {
	return len(p.workers)
}

// Executor returns one of the pool's executors, chosen round-robin. The
// returned executor is shared; callers needing exclusive sequencing should
// create their own.
func (p *WorkerPool) Executor() *core.TaskExecutor {
	n := p.next.Add(1) - 1
	return p.workers[n%uint64(len(p.workers))]
}

// Cast queues task on the next worker, fire-and-forget.
func (p *WorkerPool) Cast(task core.Task) {
	p.Executor().Cast(task)
}

// Wait blocks until every task accepted by every worker has finished.
func (p *WorkerPool) Wait() {
	for _, w := range p.workers {
		w.Wait()
	}
}

// Stop shuts all workers down, draining their queues. Safe to call more than
// once.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		for _, w := range p.workers {
			w.Stop()
		}
	})
}

// IsRunning reports whether the pool has not been stopped.
func (p *WorkerPool) IsRunning() bool {
	return !p.stopped.Load()
}

// Stats returns a snapshot of the pool's runtime state, aggregated over its
// workers.
func (p *WorkerPool) Stats() core.PoolStats {
	stats := core.PoolStats{
		ID:      p.id,
		Workers: len(p.workers),
		Running: p.IsRunning(),
	}
	for _, w := range p.workers {
		s := w.Stats()
		stats.Queued += s.QueueDepth
		stats.Outstanding += s.Outstanding
	}
	return stats
}

// =============================================================================
// Default Pool Helper (Singleton)
// =============================================================================

var (
	defaultPool *WorkerPool
	defaultMu   sync.Mutex
)

// InitDefaultPool initializes the process-wide default pool with the
// specified number of workers. It is a no-op if the pool already exists.
func InitDefaultPool(workers int) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultPool != nil {
		return
	}
	defaultPool = NewWorkerPool("default-pool", workers)
}

// DefaultPool returns the process-wide default pool, creating it with one
// worker per CPU on first use. It is a convenience only; nothing in the core
// depends on it.
func DefaultPool() *WorkerPool {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultPool == nil {
		defaultPool = NewWorkerPool("default-pool", runtime.NumCPU())
	}
	return defaultPool
}

// ShutdownDefaultPool stops the default pool. A later DefaultPool call
// creates a fresh one.
func ShutdownDefaultPool() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultPool != nil {
		defaultPool.Stop()
		defaultPool = nil
	}
}
