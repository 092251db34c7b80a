package components

import (
	"math"
	"time"
)

// TimerMode selects whether a timer stops or wraps when it elapses.
type TimerMode uint8

const (
	TimerOnce TimerMode = iota
	TimerRepeating
)

// Timer counts elapsed time toward a duration. It is advanced only by
// frame deltas passed to Tick. Time is kept in whole nanoseconds so that
// repeated frame steps do not drift against the period.
type Timer struct {
	Duration time.Duration
	Elapsed  time.Duration
	Mode     TimerMode

	finished      bool
	timesFinished int
}

// slack absorbs the rounding of a fractional frame step to nanoseconds.
const slack = time.Microsecond

// NewTimer returns a stopped-at-zero timer of the given length in seconds.
func NewTimer(seconds float64, mode TimerMode) Timer {
	return Timer{Duration: toDuration(seconds), Mode: mode}
}

func toDuration(seconds float64) time.Duration {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// Tick advances the timer by dt seconds and returns it for chaining.
func (t *Timer) Tick(dt float64) *Timer {
	t.timesFinished = 0
	if t.Mode == TimerOnce && t.finished {
		return t
	}
	t.Elapsed += toDuration(dt)
	if t.Elapsed+slack < t.Duration {
		t.finished = false
		return t
	}

	if t.Mode == TimerOnce {
		t.Elapsed = t.Duration
		t.finished = true
		t.timesFinished = 1
		return t
	}

	if t.Duration <= 0 {
		t.finished = true
		t.timesFinished = 1
		t.Elapsed = 0
		return t
	}
	n := (t.Elapsed + slack) / t.Duration
	t.Elapsed = max(0, t.Elapsed-n*t.Duration)
	t.finished = true
	t.timesFinished = int(n)
	return t
}

// Finished reports whether the timer has reached its duration. A repeating
// timer is finished only on the tick it wraps.
func (t *Timer) Finished() bool { return t.finished }

// JustFinished reports whether the last Tick crossed the duration.
func (t *Timer) JustFinished() bool { return t.timesFinished > 0 }

// TimesFinishedThisTick is the number of wraps during the last Tick.
func (t *Timer) TimesFinishedThisTick() int { return t.timesFinished }

// Remaining returns the seconds left until the next finish.
func (t *Timer) Remaining() float64 {
	return max(0, t.Duration-t.Elapsed).Seconds()
}

// Fraction returns elapsed/duration in [0,1].
func (t *Timer) Fraction() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return math.Min(1, float64(t.Elapsed)/float64(t.Duration))
}

// Reset rewinds the timer to zero.
func (t *Timer) Reset() {
	t.Elapsed = 0
	t.finished = false
	t.timesFinished = 0
}
