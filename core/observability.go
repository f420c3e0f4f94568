package core

import "time"

// ExecutorStats represents runtime observability state for a task executor.
type ExecutorStats struct {
	Name          string
	QueueDepth    int
	QueueCapacity int
	Outstanding   int
	Executed      int64
	Panics        int64
	Rejected      int64
	Closed        bool
}

// PoolStats represents runtime observability state for a worker pool.
type PoolStats struct {
	ID          string
	Workers     int
	Queued      int
	Outstanding int
	Running     bool
}

// TimerStats represents runtime observability state for an interval timer.
type TimerStats struct {
	Running  bool
	Fires    int64
	Interval time.Duration
	LastFire time.Time
}
