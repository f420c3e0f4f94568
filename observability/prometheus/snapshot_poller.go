package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/coopergo/go-actor/core"
)

// ExecutorSnapshotProvider provides current executor stats snapshots.
// core.TaskExecutor and core.Actor both satisfy it.
type ExecutorSnapshotProvider interface {
	Stats() core.ExecutorStats
}

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports executor/pool Stats() snapshots into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	executorsMu sync.RWMutex
	executors   map[string]ExecutorSnapshotProvider

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	executorQueueDepth  *prom.GaugeVec
	executorOutstanding *prom.GaugeVec
	executorExecuted    *prom.GaugeVec
	executorPanics      *prom.GaugeVec
	executorRejected    *prom.GaugeVec
	executorClosed      *prom.GaugeVec

	poolQueued      *prom.GaugeVec
	poolOutstanding *prom.GaugeVec
	poolWorkers     *prom.GaugeVec
	poolRunning     *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	executorQueueDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "executor_queue_depth",
		Help:      "Queued tasks per executor.",
	}, []string{"executor"})
	executorOutstanding := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "executor_outstanding",
		Help:      "Accepted tasks not yet completed per executor.",
	}, []string{"executor"})
	executorExecuted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "executor_executed_total",
		Help:      "Executor completed task count snapshot.",
	}, []string{"executor"})
	executorPanics := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "executor_panics_total",
		Help:      "Executor task panic count snapshot.",
	}, []string{"executor"})
	executorRejected := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "executor_rejected_total",
		Help:      "Executor rejected task count snapshot.",
	}, []string{"executor"})
	executorClosed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "executor_closed",
		Help:      "Executor closed state (1=closed, 0=open).",
	}, []string{"executor"})

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "pool_queued",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolOutstanding := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "pool_outstanding",
		Help:      "Accepted tasks not yet completed per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "actor",
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=stopped).",
	}, []string{"pool"})

	var err error
	if executorQueueDepth, err = registerCollector(reg, executorQueueDepth); err != nil {
		return nil, err
	}
	if executorOutstanding, err = registerCollector(reg, executorOutstanding); err != nil {
		return nil, err
	}
	if executorExecuted, err = registerCollector(reg, executorExecuted); err != nil {
		return nil, err
	}
	if executorPanics, err = registerCollector(reg, executorPanics); err != nil {
		return nil, err
	}
	if executorRejected, err = registerCollector(reg, executorRejected); err != nil {
		return nil, err
	}
	if executorClosed, err = registerCollector(reg, executorClosed); err != nil {
		return nil, err
	}
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolOutstanding, err = registerCollector(reg, poolOutstanding); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:            interval,
		executors:           make(map[string]ExecutorSnapshotProvider),
		pools:               make(map[string]PoolSnapshotProvider),
		executorQueueDepth:  executorQueueDepth,
		executorOutstanding: executorOutstanding,
		executorExecuted:    executorExecuted,
		executorPanics:      executorPanics,
		executorRejected:    executorRejected,
		executorClosed:      executorClosed,
		poolQueued:          poolQueued,
		poolOutstanding:     poolOutstanding,
		poolWorkers:         poolWorkers,
		poolRunning:         poolRunning,
	}, nil
}

// AddExecutor adds or replaces an executor snapshot provider by name.
func (p *SnapshotPoller) AddExecutor(name string, provider ExecutorSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "executor")
	p.executorsMu.Lock()
	p.executors[name] = provider
	p.executorsMu.Unlock()
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.executorsMu.RLock()
	for name, provider := range p.executors {
		stats := provider.Stats()
		p.executorQueueDepth.WithLabelValues(name).Set(float64(stats.QueueDepth))
		p.executorOutstanding.WithLabelValues(name).Set(float64(stats.Outstanding))
		p.executorExecuted.WithLabelValues(name).Set(float64(stats.Executed))
		p.executorPanics.WithLabelValues(name).Set(float64(stats.Panics))
		p.executorRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		if stats.Closed {
			p.executorClosed.WithLabelValues(name).Set(1)
		} else {
			p.executorClosed.WithLabelValues(name).Set(0)
		}
	}
	p.executorsMu.RUnlock()

	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolOutstanding.WithLabelValues(name).Set(float64(stats.Outstanding))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()
}
