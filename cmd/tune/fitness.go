package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/game"
	"github.com/pthm-cable/cell/telemetry"
)

// Target is the round shape the tuner aims for.
type Target struct {
	RoundSec float64 // Mean round length in simulated seconds
	WinRate  float64 // Fraction of rounds the scripted player wins
}

// TargetFromRounds takes the target from a recorded rounds.csv, so the
// scripted player can be tuned toward the shape of a real session.
func TargetFromRounds(path string) (Target, error) {
	records, err := telemetry.ReadRounds(path)
	if err != nil {
		return Target{}, err
	}
	s := telemetry.Summarize(records)
	if s.Rounds == 0 || s.MeanTime <= 0 {
		return Target{}, fmt.Errorf("%s: no finished rounds", path)
	}
	return Target{RoundSec: s.MeanTime, WinRate: s.WinRate}, nil
}

// FitnessEvaluator plays headless sessions and scores them against a target.
type FitnessEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	seeds      []int64
	rounds     int
	maxFrames  int
	target     Target

	mu          sync.Mutex
	lastSummary telemetry.Summary
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, seeds []int64, rounds, maxFrames int, target Target) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		baseConfig: baseCfg,
		seeds:      seeds,
		rounds:     rounds,
		maxFrames:  maxFrames,
		target:     target,
	}
}

// LastSummary returns the round summary from the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() telemetry.Summary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Config returns a copy of the base config with x applied.
func (fe *FitnessEvaluator) Config(x []float64) *config.Config {
	cfg := *fe.baseConfig
	cfg.Audio.Enabled = false
	fe.params.ApplyToConfig(&cfg, x)
	return &cfg
}

// Evaluate computes fitness for raw parameter values (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.Config(x)

	// Seeds run in parallel; each game owns its world
	results := make([][]telemetry.RoundRecord, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.play(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	var all []telemetry.RoundRecord
	for _, r := range results {
		all = append(all, r...)
	}
	summary := telemetry.Summarize(all)

	fe.mu.Lock()
	fe.lastSummary = summary
	fe.mu.Unlock()

	return Score(summary, fe.target)
}

func (fe *FitnessEvaluator) play(cfg *config.Config, seed int64) []telemetry.RoundRecord {
	g, err := game.New(cfg, game.Options{MaxRounds: fe.rounds})
	if err != nil {
		slog.Error("creating game", "seed", seed, "error", err)
		return nil
	}
	host := game.NewHeadlessHost(cfg, seed, fe.maxFrames)
	if err := g.Loop(context.Background(), host); err != nil {
		slog.Error("playing session", "seed", seed, "error", err)
		return nil
	}
	return g.Rounds()
}

// noRoundsPenalty scores sessions where no round finished.
const noRoundsPenalty = 10.0

// Score is the squared relative error of round length plus the squared
// error of win rate.
func Score(s telemetry.Summary, t Target) float64 {
	if s.Rounds == 0 {
		return noRoundsPenalty
	}
	timeErr := (s.MeanTime - t.RoundSec) / t.RoundSec
	winErr := s.WinRate - t.WinRate
	return timeErr*timeErr + winErr*winErr
}

// isFinite reports whether f is usable as a fitness.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
