package components

import (
	"math"
	"testing"
)

func TestTimerOnce(t *testing.T) {
	tm := NewTimer(1.0, TimerOnce)

	tm.Tick(0.5)
	if tm.Finished() || tm.JustFinished() {
		t.Fatal("timer finished early")
	}
	if math.Abs(tm.Remaining()-0.5) > 1e-9 {
		t.Errorf("expected 0.5 remaining, got %f", tm.Remaining())
	}

	tm.Tick(0.5)
	if !tm.Finished() || !tm.JustFinished() {
		t.Fatal("expected timer to finish at its duration")
	}

	tm.Tick(0.5)
	if !tm.Finished() {
		t.Error("once timer should stay finished")
	}
	if tm.JustFinished() {
		t.Error("once timer should only just-finish once")
	}
	if tm.Fraction() != 1 {
		t.Errorf("expected fraction 1, got %f", tm.Fraction())
	}
}

func TestTimerRepeating(t *testing.T) {
	tests := []struct {
		name     string
		period   float64
		dt       float64
		ticks    int
		expected int
	}{
		{"exact multiples", 2.0, 0.5, 16, 4},
		{"one short", 2.0, 0.5, 15, 3},
		{"large step wraps twice", 1.0, 2.5, 1, 2},
		{"quarter steps", 0.5, 0.25, 9, 4},
		{"60 fps over ten seconds", 2.0, 1.0 / 60, 600, 5},
		{"60 fps one frame short", 2.0, 1.0 / 60, 599, 4},
		{"30 fps over ten seconds", 2.0, 1.0 / 30, 300, 5},
		{"fifth of a second steps", 2.0, 0.2, 50, 5},
		{"tenth of a second steps", 1.5, 0.1, 30, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := NewTimer(tt.period, TimerRepeating)
			total := 0
			for i := 0; i < tt.ticks; i++ {
				total += tm.Tick(tt.dt).TimesFinishedThisTick()
			}
			if total != tt.expected {
				t.Errorf("expected %d wraps, got %d", tt.expected, total)
			}
		})
	}
}

func TestTimerRepeatingJustFinishedOncePerWrap(t *testing.T) {
	tm := NewTimer(1.0, TimerRepeating)
	tm.Tick(1.0)
	if !tm.JustFinished() {
		t.Fatal("expected just finished")
	}
	tm.Tick(0.25)
	if tm.JustFinished() || tm.Finished() {
		t.Error("repeating timer should clear finished after wrapping")
	}
}

func TestTimerReset(t *testing.T) {
	tm := NewTimer(1.0, TimerOnce)
	tm.Tick(2)
	tm.Reset()
	if tm.Finished() || tm.Elapsed != 0 {
		t.Error("reset should rewind the timer")
	}
}

func TestTimerOnceFinishesOnExactTick(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		dt       float64
		ticks    int
	}{
		{"tenths", 5.0, 0.1, 50},
		{"60 fps", 5.0, 1.0 / 60, 300},
		{"30 fps", 1.0, 1.0 / 30, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := NewTimer(tt.duration, TimerOnce)
			for i := 1; i < tt.ticks; i++ {
				if tm.Tick(tt.dt).Finished() {
					t.Fatalf("finished early at tick %d", i)
				}
			}
			if !tm.Tick(tt.dt).JustFinished() {
				t.Errorf("expected finish at tick %d", tt.ticks)
			}
		})
	}
}
