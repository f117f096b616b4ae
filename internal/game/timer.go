package game

import "time"

// Timer is an accumulate-and-compare counter driven by tick deltas.
// A repeating timer keeps the overshoot so its long-run rate matches Period.
type Timer struct {
	Period  time.Duration
	Repeat  bool
	elapsed time.Duration
	done    bool
}

// NewTimer returns a timer that fires after period.
func NewTimer(period time.Duration, repeat bool) Timer {
	return Timer{Period: period, Repeat: repeat}
}

// Tick advances the timer by dt and reports whether it fired during this tick.
func (t *Timer) Tick(dt time.Duration) bool {
	if t.Period <= 0 {
		return true
	}
	if t.done {
		return false
	}
	t.elapsed += dt
	if t.elapsed < t.Period {
		return false
	}
	if t.Repeat {
		t.elapsed %= t.Period
	} else {
		t.elapsed = t.Period
		t.done = true
	}
	return true
}

// Finished reports whether a one-shot timer has fired.
func (t *Timer) Finished() bool {
	return t.done
}

// Remaining returns the time left before the timer fires next.
func (t *Timer) Remaining() time.Duration {
	if t.done {
		return 0
	}
	return t.Period - t.elapsed
}

// Reset rewinds the timer.
func (t *Timer) Reset() {
	t.elapsed = 0
	t.done = false
}
