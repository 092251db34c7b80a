package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMovement)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseCollision)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[PhaseMovement]; !ok {
		t.Error("expected movement phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[PhaseCollision]; !ok {
		t.Error("expected collision phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseMovement)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfCollector_NilIsNoop(t *testing.T) {
	var pc *PerfCollector
	pc.StartTick()
	pc.StartPhase(PhaseInput)
	pc.EndTick()
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 || stats.PhasePct == nil {
		t.Errorf("unexpected stats from nil collector: %+v", stats)
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{
		AvgTickDuration: 250 * time.Microsecond,
		PhasePct:        map[string]float64{PhaseSpawn: 12.5, PhaseCore: 3},
	}
	rec := stats.ToCSV(600)
	if rec.WindowEnd != 600 || rec.AvgTickUS != 250 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.SpawnPct != 12.5 || rec.CorePct != 3 || rec.InputPct != 0 {
		t.Errorf("phase columns not mapped: %+v", rec)
	}
}

func TestPerfStatsLogStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	stats := PerfStats{
		AvgTickDuration: 250 * time.Microsecond,
		MaxTickDuration: time.Millisecond,
		TicksPerSecond:  60,
		PhasePct:        map[string]float64{PhaseMovement: 42.26, PhaseSpawn: 0.05},
	}
	stats.LogStats(logger, 120)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decoding log line %q: %v", buf.String(), err)
	}
	if got["msg"] != "perf window" || got["tick"] != float64(120) {
		t.Errorf("unexpected record %v", got)
	}
	if got["avg_tick_us"] != float64(250) || got["max_tick_us"] != float64(1000) {
		t.Errorf("tick durations = %v / %v", got["avg_tick_us"], got["max_tick_us"])
	}
	if got[PhaseMovement+"_pct"] != 42.3 {
		t.Errorf("movement pct = %v, want 42.3", got[PhaseMovement+"_pct"])
	}
	if _, ok := got[PhaseSpawn+"_pct"]; ok {
		t.Error("negligible phase should be left out")
	}
	if _, ok := got["fps"]; ok {
		t.Error("fps should be omitted when zero")
	}
}
