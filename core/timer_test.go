package core

import (
	"sync/atomic"
	"testing"
	"time"
)

// TestIntervalTimer_PeriodicFires verifies repeated invocation at the interval
// Given: A timer started with equal initial delay and interval
// When: Several intervals elapse
// Then: The callback has fired roughly once per interval
func TestIntervalTimer_PeriodicFires(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
	})

	// Act
	timer.StartPeriodic(30 * time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	timer.Stop()

	// Assert - ~6 fires expected; allow generous scheduling slack
	got := fires.Load()
	if got < 3 || got > 9 {
		t.Errorf("fires = %d, want between 3 and 9", got)
	}
	if timer.IsRunning() {
		t.Error("IsRunning() = true after Stop, want false")
	}
}

// TestIntervalTimer_OneShot verifies single invocation after a delay
// Given: A timer started with StartOneShot
// When: The delay elapses
// Then: The callback fired exactly once and the timer stopped itself
func TestIntervalTimer_OneShot(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
	})

	// Act
	timer.StartOneShot(30 * time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	// Assert
	if got := fires.Load(); got != 1 {
		t.Errorf("fires = %d, want 1", got)
	}
	if timer.IsRunning() {
		t.Error("IsRunning() = true after a one-shot completed, want false")
	}
}

// TestIntervalTimer_ZeroDelayOneShot verifies immediate one-shot firing
func TestIntervalTimer_ZeroDelayOneShot(t *testing.T) {
	// Arrange
	fired := make(chan struct{})
	timer := NewIntervalTimer(func() {
		close(fired)
	})

	// Act
	timer.StartOneShot(0)

	// Assert
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("zero-delay one-shot did not fire")
	}
}

// TestIntervalTimer_StopDuringInitialDelay verifies cancellation before first fire
// Given: A timer with a long initial delay
// When: Stop is called before the delay elapses
// Then: The callback never runs
func TestIntervalTimer_StopDuringInitialDelay(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
	})

	// Act
	timer.StartPeriodic(time.Hour)
	time.Sleep(20 * time.Millisecond)
	timer.Stop()
	time.Sleep(50 * time.Millisecond)

	// Assert
	if got := fires.Load(); got != 0 {
		t.Errorf("fires = %d, want 0", got)
	}
	if timer.IsRunning() {
		t.Error("IsRunning() = true after Stop, want false")
	}
}

// TestIntervalTimer_InitialDelayDiffersFromInterval verifies the extra first fire
// Given: A timer whose initial delay is shorter than its interval
// When: The initial delay elapses but the first interval has not
// Then: Exactly one fire has happened
func TestIntervalTimer_InitialDelayDiffersFromInterval(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
	})

	// Act - First fire at 30ms, then every 300ms
	timer.Start(30*time.Millisecond, 300*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	got := fires.Load()
	timer.Stop()

	// Assert
	if got != 1 {
		t.Errorf("fires after initial delay = %d, want 1", got)
	}
}

// TestIntervalTimer_Restart verifies a timer can be reused after Stop
func TestIntervalTimer_Restart(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
	})

	// Act - First run
	timer.StartPeriodic(20 * time.Millisecond)
	time.Sleep(70 * time.Millisecond)
	timer.Stop()
	afterFirst := fires.Load()

	// Act - Second run on the same timer
	timer.StartPeriodic(20 * time.Millisecond)
	time.Sleep(70 * time.Millisecond)
	timer.Stop()

	// Assert
	if afterFirst < 1 {
		t.Errorf("fires after first run = %d, want >= 1", afterFirst)
	}
	if got := fires.Load(); got <= afterFirst {
		t.Errorf("fires after restart = %d, want > %d", got, afterFirst)
	}
}

// TestIntervalTimer_StartWhileRunningRestarts verifies implicit restart
// Given: A running timer with a long interval
// When: Start is called again with a short interval
// Then: The new schedule takes effect
func TestIntervalTimer_StartWhileRunningRestarts(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
	})
	timer.StartPeriodic(time.Hour)

	// Act
	timer.StartPeriodic(20 * time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	timer.Stop()

	// Assert
	if got := fires.Load(); got < 1 {
		t.Errorf("fires = %d, want >= 1 after restart with short interval", got)
	}
}

// TestIntervalTimer_OverrunSkipsAhead verifies drift handling on slow callbacks
// Given: A callback that takes several intervals to run
// When: The timer keeps going
// Then: Missed ticks are skipped rather than fired in a burst
func TestIntervalTimer_OverrunSkipsAhead(t *testing.T) {
	// Arrange
	var fires atomic.Int64
	timer := NewIntervalTimer(func() {
		fires.Add(1)
		time.Sleep(50 * time.Millisecond) // overruns the 10ms interval
	})

	// Act
	timer.StartPeriodic(10 * time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	timer.Stop()

	// Assert - Without skip-ahead this would be ~20 fires catching up
	got := fires.Load()
	if got < 2 || got > 6 {
		t.Errorf("fires = %d, want between 2 and 6 (one per callback duration)", got)
	}
}

// TestIntervalTimer_CallbackPanicRecovered verifies the schedule survives panics
// Given: A timer whose callback panics on the first fire
// When: Subsequent intervals elapse
// Then: The callback keeps being invoked and the handler saw the panic
func TestIntervalTimer_CallbackPanicRecovered(t *testing.T) {
	// Arrange
	ph := &recordingPanicHandler{}
	var fires atomic.Int64
	timer := NewIntervalTimerWithConfig(func() {
		if fires.Add(1) == 1 {
			panic("tick failed")
		}
	}, TimerConfig{Name: "panicky", PanicHandler: ph})

	// Act
	timer.StartPeriodic(20 * time.Millisecond)
	time.Sleep(120 * time.Millisecond)
	timer.Stop()

	// Assert
	if got := fires.Load(); got < 2 {
		t.Errorf("fires = %d, want >= 2 (schedule must survive the panic)", got)
	}
	ph.mu.Lock()
	calls := ph.calls
	ph.mu.Unlock()
	if calls != 1 {
		t.Errorf("panic handler calls = %d, want 1", calls)
	}
}

// TestIntervalTimer_StopIdempotent verifies repeated and early stops
func TestIntervalTimer_StopIdempotent(t *testing.T) {
	timer := NewIntervalTimer(func() {})
	timer.Stop() // never started: must be a no-op
	timer.StartPeriodic(time.Hour)
	timer.Stop()
	timer.Stop() // second stop must not block or panic
	if timer.IsRunning() {
		t.Error("IsRunning() = true after Stop, want false")
	}
}

// TestIntervalTimer_Stats verifies the snapshot fields
func TestIntervalTimer_Stats(t *testing.T) {
	// Arrange
	timer := NewIntervalTimer(func() {})

	// Act
	timer.StartPeriodic(20 * time.Millisecond)
	time.Sleep(70 * time.Millisecond)
	stats := timer.Stats()
	timer.Stop()

	// Assert
	if !stats.Running {
		t.Error("Stats().Running = false on a started timer, want true")
	}
	if stats.Interval != 20*time.Millisecond {
		t.Errorf("Stats().Interval = %v, want 20ms", stats.Interval)
	}
	if stats.Fires < 1 {
		t.Errorf("Stats().Fires = %d, want >= 1", stats.Fires)
	}
	if stats.LastFire.IsZero() {
		t.Error("Stats().LastFire is zero after a fire, want set")
	}
}

// TestNewIntervalTimer_NilCallbackPanics verifies constructor validation
func TestNewIntervalTimer_NilCallbackPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewIntervalTimer(nil) did not panic, want panic")
		}
	}()
	NewIntervalTimer(nil)
}
