// Package main tunes enemy fire period and particle speed so scripted
// headless sessions hit a target round length and win rate.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/cell/config"
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	FirePeriod    float64 `csv:"enemy_fire_period"`
	ParticleSpeed float64 `csv:"particle_speed"`
	Rounds        int     `csv:"rounds"`
	MeanTime      float64 `csv:"mean_round_sec"`
	WinRate       float64 `csv:"win_rate"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 4, "Number of seeds per evaluation")
	rounds := flag.Int("rounds", 6, "Rounds played per seed")
	maxFrames := flag.Int("max-frames", 36000, "Frame cap per seed")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	targetSec := flag.Float64("target-sec", 20, "Target mean round length in seconds")
	targetWin := flag.Float64("target-win", 0.5, "Target win rate of the scripted player")
	targetFrom := flag.String("target-from", "", "Take the target from a recorded rounds.csv (overrides -target-sec/-target-win)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	// The game logs every round; keep the tuner's output readable
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector(baseCfg)

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	target := Target{RoundSec: *targetSec, WinRate: *targetWin}
	if *targetFrom != "" {
		if target, err = TargetFromRounds(*targetFrom); err != nil {
			log.Fatalf("failed to read target: %v", err)
		}
	}
	evaluator := NewFitnessEvaluator(params, baseCfg, evalSeeds, *rounds, *maxFrames, target)

	var records []EvalRecord
	bestFitness := noRoundsPenalty
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			if !isFinite(fitness) {
				fitness = noRoundsPenalty
			}
			summary := evaluator.LastSummary()

			records = append(records, EvalRecord{
				Eval:          len(records) + 1,
				Fitness:       fitness,
				FirePeriod:    raw[0],
				ParticleSpeed: raw[1],
				Rounds:        summary.Rounds,
				MeanTime:      summary.MeanTime,
				WinRate:       summary.WinRate,
			})
			if fitness < bestFitness || bestParams == nil {
				bestFitness = fitness
				bestParams = raw
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-len(records)) * (elapsed / time.Duration(len(records)))
			fmt.Printf("Eval %d/%d: fire=%.2fs speed=%.0f rounds=%d mean=%.1fs win=%.2f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
				len(records), *maxEvals, raw[0], raw[1], summary.Rounds, summary.MeanTime, summary.WinRate,
				fitness, bestFitness, formatDuration(elapsed), formatDuration(max(remaining, 0)))
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential; seeds already run in parallel
	}
	method := &optimize.NelderMead{SimplexSize: 0.2}

	fmt.Printf("Starting Nelder-Mead with %d parameters, max_evals=%d\n", params.Dim(), *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, rounds per seed: %d, target: %.1fs at %.0f%% wins\n",
		*seeds, *rounds, target.RoundSec, target.WinRate*100)

	initX := params.Normalize(params.DefaultVector())
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		log.Printf("optimization ended: %v", err)
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", len(records), formatDuration(time.Since(startTime)))
	if bestParams == nil {
		log.Fatal("no evaluations ran")
	}

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.4f\n", spec.Path, bestParams[i])
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	if err := writeLog(logPath, records); err != nil {
		log.Printf("failed to write log: %v", err)
	}

	bestCfg := evaluator.Config(bestParams)
	bestCfg.Audio.Enabled = baseCfg.Audio.Enabled
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}
}

func writeLog(path string, records []EvalRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&records, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
