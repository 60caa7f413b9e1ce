package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/trail/systems"
)

func TestCollectorWindowFrames(t *testing.T) {
	c := NewCollector(1, 60)
	if got := c.WindowDurationFrames(); got != 60 {
		t.Fatalf("window frames = %d, want 60", got)
	}

	if c.ShouldFlush(59) {
		t.Error("should not flush before the window is full")
	}
	if !c.ShouldFlush(60) {
		t.Error("should flush once the window is full")
	}
}

func TestCollectorElapsedAtOddRates(t *testing.T) {
	// 30 fps terminal ticker with a 2s window
	c := NewCollector(2, 30)
	if got := c.WindowDurationFrames(); got != 60 {
		t.Fatalf("window frames = %d, want 60", got)
	}
	if got := c.Flush(60, nil, 0).ElapsedSec; math.Abs(got-2) > 1e-12 {
		t.Errorf("elapsed = %v, want 2", got)
	}

	c = NewCollector(1, 144)
	if got := c.Flush(432, nil, 0).ElapsedSec; math.Abs(got-3) > 1e-12 {
		t.Errorf("elapsed at 144fps = %v, want 3", got)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 60)

	c.RecordSpawns(2, 7)
	c.RecordSpawns(1, 1)
	c.RecordExpired(3)
	c.RecordSkippedFrame()
	c.ObserveLive(12)
	c.ObserveLive(5)

	particles := []systems.Particle{
		{Size: 10, Life: 1, VelX: 3, VelY: 4, Shape: systems.ShapeDisc},
		{Size: 10, Life: 0.5, Shape: systems.ShapeStar},
		{Size: 8, Life: 0.25, Shape: systems.ShapeRing},
	}
	stats := c.Flush(60, particles, 42.5)

	if stats.Batches != 3 || stats.Spawned != 8 || stats.Expired != 3 || stats.SkippedFrames != 1 {
		t.Errorf("unexpected counters %+v", stats)
	}
	if stats.Live != 3 || stats.PeakLive != 12 {
		t.Errorf("live/peak = %d/%d, want 3/12", stats.Live, stats.PeakLive)
	}
	if stats.Discs != 1 || stats.Stars != 1 || stats.Rings != 1 || stats.Diamonds != 0 {
		t.Errorf("unexpected shape mix %+v", stats)
	}
	if math.Abs(stats.ElapsedSec-1) > 1e-9 {
		t.Errorf("elapsed = %v, want 1", stats.ElapsedSec)
	}
	// Drawn sizes 10, 5, 2
	if math.Abs(stats.SizeMean-17.0/3) > 1e-9 {
		t.Errorf("size mean = %v, want %v", stats.SizeMean, 17.0/3)
	}
	if math.Abs(stats.LifeP50-0.5) > 1e-9 {
		t.Errorf("life p50 = %v, want 0.5", stats.LifeP50)
	}
	if math.Abs(stats.SpeedMean-5.0/3) > 1e-9 {
		t.Errorf("speed mean = %v, want %v", stats.SpeedMean, 5.0/3)
	}
	if stats.Hue != 42.5 {
		t.Errorf("hue = %v, want 42.5", stats.Hue)
	}

	// Flush must not reorder the caller's particles
	if particles[0].Shape != systems.ShapeDisc || particles[2].Shape != systems.ShapeRing {
		t.Error("flush modified the particle slice")
	}

	next := c.Flush(120, nil, 0)
	if next.WindowStartFrame != 60 || next.Batches != 0 || next.PeakLive != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
