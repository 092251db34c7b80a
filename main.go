package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/profile"

	"github.com/pthm-cable/cell/audio"
	"github.com/pthm-cable/cell/config"
	"github.com/pthm-cable/cell/game"
	"github.com/pthm-cable/cell/telemetry"
	"github.com/pthm-cable/cell/terminal"
)

func main() {
	if err := run(); err != nil {
		slog.Error("cell exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "window", "Host: window, tui or headless")
	seed := flag.Int64("seed", 0, "RNG seed for headless input and audio noise (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N game ticks (0 = unlimited)")
	rounds := flag.Int("rounds", 0, "Stop after N finished rounds (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	profileMode := flag.String("profile", "", "Write a cpu or mem profile to the working directory")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("parsing -log-level: %w", err)
	}

	// The terminal host owns stdout, so TUI logs go to a file
	var logOut io.Writer = os.Stdout
	if *mode == "tui" {
		f, err := os.Create("cell.log")
		if err != nil {
			return fmt.Errorf("creating log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level})))

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	default:
		return fmt.Errorf("unknown -profile %q (want cpu or mem)", *profileMode)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing config snapshot: %w", err)
	}

	opts := game.Options{
		Output:    out,
		Perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		MaxTicks:  *maxTicks,
		MaxRounds: *rounds,
	}

	var host game.Host
	switch *mode {
	case "window":
		host = game.NewWindowHost(cfg, opts.Perf)
	case "tui":
		t, err := terminal.New(cfg.Screen.TargetFPS)
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		host = t
	case "headless":
		cfg.Audio.Enabled = false
		host = game.NewHeadlessHost(cfg, rngSeed, 0)
	default:
		return fmt.Errorf("unknown -mode %q (want window, tui or headless)", *mode)
	}

	player := audio.New(cfg.Audio, rngSeed)
	if err := player.Init(); err != nil {
		// Non-fatal, the game runs without sound
		slog.Warn("audio disabled", "error", err)
	}
	defer player.Close()
	opts.Audio = player

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting",
		"mode", *mode,
		"seed", rngSeed,
		"levels", len(cfg.Levels),
		"max_ticks", *maxTicks,
		"rounds", *rounds,
		"output_dir", out.Dir(),
	)

	summary, err := game.Run(ctx, cfg, host, opts)
	if err != nil {
		return err
	}
	if summary.Rounds > 0 {
		slog.Info("summary", "rounds", summary)
	}
	return nil
}
