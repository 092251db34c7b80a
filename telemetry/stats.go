package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the p-th empirical quantile of sorted, p in [0, 1].
// Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Summary aggregates a set of rounds.
type Summary struct {
	Rounds    int
	Wins      int
	Losses    int
	WinRate   float64
	MeanTime  float64 // Mean round duration in sim seconds
	StdTime   float64
	P50Time   float64
	P90Time   float64
	MeanHits  float64
	BestScore int
}

// Summarize computes a Summary over records.
func Summarize(records []RoundRecord) Summary {
	s := Summary{Rounds: len(records)}
	if len(records) == 0 {
		return s
	}

	times := make([]float64, len(records))
	hits := make([]float64, len(records))
	for i, r := range records {
		times[i] = r.SimTimeSec
		hits[i] = float64(r.Hits)
		if r.Won() {
			s.Wins++
		} else {
			s.Losses++
		}
		s.BestScore = max(s.BestScore, r.Score)
	}
	s.WinRate = float64(s.Wins) / float64(s.Rounds)

	s.MeanTime = stat.Mean(times, nil)
	if len(times) > 1 {
		s.StdTime = stat.StdDev(times, nil)
	}
	s.MeanHits = stat.Mean(hits, nil)

	slices.Sort(times)
	s.P50Time = Percentile(times, 0.5)
	s.P90Time = Percentile(times, 0.9)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("rounds", s.Rounds),
		slog.Int("wins", s.Wins),
		slog.Int("losses", s.Losses),
		slog.Float64("win_rate", s.WinRate),
		slog.Float64("mean_time", s.MeanTime),
		slog.Float64("std_time", s.StdTime),
		slog.Float64("p50_time", s.P50Time),
		slog.Float64("p90_time", s.P90Time),
		slog.Float64("mean_hits", s.MeanHits),
		slog.Int("best_score", s.BestScore),
	)
}
