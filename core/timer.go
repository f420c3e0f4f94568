package core

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TimerConfig holds configuration options for an IntervalTimer.
// All fields are optional; zero values select defaults.
type TimerConfig struct {
	// Name identifies the timer in logs. Defaults to a generated id.
	Name string

	// Logger receives lifecycle events. Defaults to NewDefaultLogger().
	Logger Logger

	// PanicHandler is called when the callback panics. Defaults to
	// DefaultPanicHandler.
	PanicHandler PanicHandler
}

// IntervalTimer invokes a stored callback from a dedicated goroutine, either
// once after a delay or repeatedly at a fixed period. One-shot and periodic
// are two configurations of the same mechanism, selected by the interval:
// zero means one-shot.
//
// The periodic schedule is drift-corrected: each fire time is anchored to the
// original schedule rather than to the end of the previous invocation. When a
// callback overruns its period the next fire skips ahead to "now" instead of
// firing a burst of catch-up calls.
type IntervalTimer struct {
	name     string
	callback func()

	logger       Logger
	panicHandler PanicHandler

	mu       sync.Mutex
	quit     chan struct{}
	done     chan struct{}
	running  bool
	interval time.Duration

	fires    atomic.Int64
	lastFire atomic.Int64 // unix nanos
}

// NewIntervalTimer creates a timer for callback. The timer is idle until
// Start is called.
func NewIntervalTimer(callback func()) *IntervalTimer {
	return NewIntervalTimerWithConfig(callback, TimerConfig{})
}

// NewIntervalTimerWithConfig creates a timer for callback with the given
// configuration. Zero-valued config fields select defaults.
func NewIntervalTimerWithConfig(callback func(), config TimerConfig) *IntervalTimer {
	if callback == nil {
		panic("core: NewIntervalTimer called with nil callback")
	}
	if config.Name == "" {
		config.Name = "timer-" + gonanoid.Must(6)
	}
	if config.Logger == nil {
		config.Logger = NewDefaultLogger()
	}
	if config.PanicHandler == nil {
		config.PanicHandler = &DefaultPanicHandler{}
	}
	return &IntervalTimer{
		name:         config.Name,
		callback:     callback,
		logger:       config.Logger,
		panicHandler: config.PanicHandler,
	}
}

// Name returns the name of the timer.
func (t *IntervalTimer) Name() string {
	return t.name
}

// Start launches the schedule on a fresh goroutine, cancelling any schedule
// already running on this timer.
//
// With interval zero the timer is one-shot: it waits initialDelay (firing
// immediately when the delay is zero), invokes the callback once, and the
// goroutine exits. With a positive interval the timer is periodic: after the
// optional initial wait and fire, the callback fires every interval with
// drift correction.
func (t *IntervalTimer) Start(initialDelay, interval time.Duration) {
	t.Stop()

	t.mu.Lock()
	t.quit = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	t.interval = interval
	quit, done := t.quit, t.done
	t.mu.Unlock()

	t.logger.Debug("timer started",
		F("timer", t.name),
		F("initialDelay", initialDelay),
		F("interval", interval))
	go t.schedule(initialDelay, interval, quit, done)
}

// StartOneShot arranges a single invocation after the given delay.
func (t *IntervalTimer) StartOneShot(delay time.Duration) {
	t.Start(delay, 0)
}

// StartPeriodic arranges repeated invocations every interval, the first one
// interval from now.
func (t *IntervalTimer) StartPeriodic(interval time.Duration) {
	t.Start(interval, interval)
}

// Stop cancels the schedule and blocks until the timer goroutine has exited;
// a callback already in flight completes first. Stopping an idle timer is a
// no-op.
func (t *IntervalTimer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	quit, done := t.quit, t.done
	t.mu.Unlock()

	close(quit)
	<-done
	t.logger.Debug("timer stopped", F("timer", t.name), F("fires", t.fires.Load()))
}

// IsRunning reports whether the timer currently has a live schedule. A
// one-shot timer stops being running once it has fired.
func (t *IntervalTimer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Stats returns a snapshot of the timer's runtime state.
func (t *IntervalTimer) Stats() TimerStats {
	t.mu.Lock()
	running := t.running
	interval := t.interval
	t.mu.Unlock()

	var last time.Time
	if nanos := t.lastFire.Load(); nanos != 0 {
		last = time.Unix(0, nanos)
	}
	return TimerStats{
		Running:  running,
		Fires:    t.fires.Load(),
		Interval: interval,
		LastFire: last,
	}
}

// schedule runs on the timer's dedicated goroutine.
func (t *IntervalTimer) schedule(initialDelay, interval time.Duration, quit <-chan struct{}, done chan struct{}) {
	defer func() {
		close(done)
		t.mu.Lock()
		// A newer schedule may already have replaced this one.
		if t.done == done {
			t.running = false
		}
		t.mu.Unlock()
	}()

	// One-shot: a single fire after the delay.
	if interval <= 0 {
		if initialDelay > 0 && !sleepInterruptibly(initialDelay, quit) {
			return
		}
		t.fire()
		return
	}

	// Periodic. An initial delay different from the period gets its own wait
	// and fire; otherwise the first fire lands one period from now.
	if initialDelay > 0 && initialDelay != interval {
		if !sleepInterruptibly(initialDelay, quit) {
			return
		}
		t.fire()
	}

	next := time.Now().Add(interval)
	for {
		if !sleepInterruptibly(time.Until(next), quit) {
			return
		}
		t.fire()
		// Anchor to the schedule, not to the end of the invocation. An
		// overrun pushes the next fire to "now" rather than bursting.
		next = next.Add(interval)
		if now := time.Now(); next.Before(now) {
			next = now
		}
	}
}

// fire invokes the callback, containing panics so a bad tick does not kill a
// periodic schedule.
func (t *IntervalTimer) fire() {
	defer func() {
		if r := recover(); r != nil {
			t.panicHandler.HandlePanic(context.Background(), t.name, r, debug.Stack())
		}
	}()
	t.fires.Add(1)
	t.lastFire.Store(time.Now().UnixNano())
	t.callback()
}

// sleepInterruptibly blocks for d (returning immediately when d <= 0) unless
// quit closes first, in which case it returns false.
func sleepInterruptibly(d time.Duration, quit <-chan struct{}) bool {
	if d <= 0 {
		// Still honor a quit that has already been requested.
		select {
		case <-quit:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-quit:
		return false
	case <-timer.C:
		return true
	}
}
