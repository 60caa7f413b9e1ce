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
	ElapsedSec       float64 `csv:"elapsed"`

	// Collection size
	Live     int `csv:"live"`
	PeakLive int `csv:"peak_live"`

	// Events during window
	Batches       int `csv:"batches"`
	Spawned       int `csv:"spawned"`
	Expired       int `csv:"expired"`
	SkippedFrames int `csv:"skipped_frames"`

	// Remaining life distribution (sampled at window end)
	LifeMean float64 `csv:"life_mean"`
	LifeP10  float64 `csv:"life_p10"`
	LifeP50  float64 `csv:"life_p50"`
	LifeP90  float64 `csv:"life_p90"`

	// Drawn size (size * life)
	SizeMean float64 `csv:"size_mean"`
	SizeStd  float64 `csv:"size_std"`

	// Particle speed
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Shape mix
	Discs    int `csv:"discs"`
	Stars    int `csv:"stars"`
	Diamonds int `csv:"diamonds"`
	Rings    int `csv:"rings"`

	Hue float64 `csv:"hue"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean and percentiles. values is sorted in place.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sort.Float64s(values)
	p10 = Percentile(values, 0.10)
	p50 = Percentile(values, 0.50)
	p90 = Percentile(values, 0.90)

	return mean, p10, p50, p90
}

// ComputeSpread returns the mean and population standard deviation.
func ComputeSpread(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("elapsed", s.ElapsedSec),
		slog.Int("live", s.Live),
		slog.Int("peak_live", s.PeakLive),
		slog.Int("batches", s.Batches),
		slog.Int("spawned", s.Spawned),
		slog.Int("expired", s.Expired),
		slog.Int("skipped_frames", s.SkippedFrames),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("life_p10", s.LifeP10),
		slog.Float64("life_p50", s.LifeP50),
		slog.Float64("life_p90", s.LifeP90),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("size_std", s.SizeStd),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("discs", s.Discs),
		slog.Int("stars", s.Stars),
		slog.Int("diamonds", s.Diamonds),
		slog.Int("rings", s.Rings),
		slog.Float64("hue", s.Hue),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"elapsed", s.ElapsedSec,
		"live", s.Live,
		"peak_live", s.PeakLive,
		"batches", s.Batches,
		"spawned", s.Spawned,
		"expired", s.Expired,
		"skipped_frames", s.SkippedFrames,
		"life_p50", s.LifeP50,
		"size_mean", s.SizeMean,
		"speed_mean", s.SpeedMean,
		"hue", s.Hue,
	)
}
