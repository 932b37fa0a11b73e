package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Scene at window end
	Particles int `csv:"particles"`
	Magnets   int `csv:"magnets"`

	// Strength distribution (sampled at window end)
	StrengthMean float64 `csv:"strength_mean"`
	StrengthStd  float64 `csv:"strength_std"`
	StrengthP10  float64 `csv:"strength_p10"`
	StrengthP50  float64 `csv:"strength_p50"`
	StrengthP90  float64 `csv:"strength_p90"`

	// Observed range as used for colouring, at window end
	MinStrength float64 `csv:"min_strength"`
	MaxStrength float64 `csv:"max_strength"`

	// Extremes over every frame of the window
	PeakStrength float64 `csv:"peak_strength"`
	ZeroFrames   int     `csv:"zero_frames"` // frames with at least one zero-field tracer
	ZeroField    int     `csv:"zero_field"`  // zero-field tracers at window end

	// Edits during window
	Moves        int `csv:"moves"`
	Rotations    int `csv:"rotations"`
	Flips        int `csv:"flips"`
	CountChanges int `csv:"count_changes"`
	Resets       int `csv:"resets"`
}

// Edits returns the total number of scene edits in the window.
func (s WindowStats) Edits() int {
	return s.Moves + s.Rotations + s.Flips + s.CountChanges + s.Resets
}

// Percentile returns the empirical p-quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	switch {
	case p < 0:
		p = 0
	case p > 1:
		p = 1
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeStrengthStats calculates mean, population std and percentiles.
func ComputeStrengthStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("magnets", s.Magnets),
		slog.Float64("strength_mean", s.StrengthMean),
		slog.Float64("strength_std", s.StrengthStd),
		slog.Float64("strength_p10", s.StrengthP10),
		slog.Float64("strength_p50", s.StrengthP50),
		slog.Float64("strength_p90", s.StrengthP90),
		slog.Float64("min_strength", s.MinStrength),
		slog.Float64("max_strength", s.MaxStrength),
		slog.Float64("peak_strength", s.PeakStrength),
		slog.Int("zero_frames", s.ZeroFrames),
		slog.Int("zero_field", s.ZeroField),
		slog.Int("moves", s.Moves),
		slog.Int("rotations", s.Rotations),
		slog.Int("flips", s.Flips),
		slog.Int("count_changes", s.CountChanges),
		slog.Int("resets", s.Resets),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"magnets", s.Magnets,
		"strength_mean", s.StrengthMean,
		"strength_std", s.StrengthStd,
		"strength_p10", s.StrengthP10,
		"strength_p50", s.StrengthP50,
		"strength_p90", s.StrengthP90,
		"min_strength", s.MinStrength,
		"max_strength", s.MaxStrength,
		"peak_strength", s.PeakStrength,
		"zero_frames", s.ZeroFrames,
		"zero_field", s.ZeroField,
		"edits", s.Edits(),
	)
}
