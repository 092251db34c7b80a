package telemetry

import "log/slog"

// RoundRecord summarises one finished round.
type RoundRecord struct {
	Round      int     `csv:"round"`
	Level      int     `csv:"level"`   // Index into the configured levels
	Counter    int     `csv:"counter"` // Level counter before the outcome was applied
	Outcome    string  `csv:"outcome"`
	Score      int     `csv:"score"`
	Ticks      int     `csv:"ticks"`
	SimTimeSec float64 `csv:"sim_time"`
	Fired      int     `csv:"enemy_shots"`
	Shots      int     `csv:"player_shots"`
	Particles  int     `csv:"particles"`
	Viruses    int     `csv:"viruses"`
	Explosions int     `csv:"explosions"`
	Hits       int     `csv:"hits"`
	Bounces    int     `csv:"bounces"`
	Pickups    int     `csv:"pickups"`
	Dropped    int     `csv:"dropped_signals"`
}

// Won reports whether the player cleared the level.
func (r RoundRecord) Won() bool {
	return r.Outcome == "Victory" || r.Outcome == "Next Level"
}

// LogValue implements slog.LogValuer for structured logging.
func (r RoundRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("round", r.Round),
		slog.Int("level", r.Level),
		slog.String("outcome", r.Outcome),
		slog.Int("score", r.Score),
		slog.Int("ticks", r.Ticks),
		slog.Float64("sim_time", r.SimTimeSec),
		slog.Int("hits", r.Hits),
		slog.Int("dropped_signals", r.Dropped),
	)
}
