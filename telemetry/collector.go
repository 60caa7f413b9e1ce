package telemetry

import (
	"math"

	"github.com/pthm-cable/trail/systems"
)

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames int64
	fps                  float64

	// Current window tracking
	windowStartFrame int64

	// Event counters for current window
	batches  int
	spawned  int
	expired  int
	skipped  int
	peakLive int

	// Scratch buffers reused across flushes
	lifeBuf  []float64
	sizeBuf  []float64
	speedBuf []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in seconds
// fps: nominal frame rate of the scheduler driving the engine
func NewCollector(windowDurationSec, fps float64) *Collector {
	if fps <= 0 {
		fps = 60
	}
	framesPerWindow := int64(math.Round(windowDurationSec * fps))
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}

	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		fps:                  fps,
	}
}

// RecordSpawns records drained batches and the particles they created.
func (c *Collector) RecordSpawns(batches, particles int) {
	c.batches += batches
	c.spawned += particles
}

// RecordExpired records particles removed by a tick.
func (c *Collector) RecordExpired(n int) {
	c.expired += n
}

// RecordSkippedFrame records a frame skipped because the surface was unavailable.
func (c *Collector) RecordSkippedFrame() {
	c.skipped++
}

// ObserveLive tracks the peak collection size.
func (c *Collector) ObserveLive(n int) {
	if n > c.peakLive {
		c.peakLive = n
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int64) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces a WindowStats from the live collection and resets counters for
// the next window. particles is only read.
func (c *Collector) Flush(currentFrame int64, particles []systems.Particle, hue float64) WindowStats {
	c.lifeBuf = c.lifeBuf[:0]
	c.sizeBuf = c.sizeBuf[:0]
	c.speedBuf = c.speedBuf[:0]

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		ElapsedSec:       float64(currentFrame) / c.fps,
		Live:             len(particles),
		PeakLive:         max(c.peakLive, len(particles)),
		Batches:          c.batches,
		Spawned:          c.spawned,
		Expired:          c.expired,
		SkippedFrames:    c.skipped,
		Hue:              hue,
	}

	for i := range particles {
		p := &particles[i]
		c.lifeBuf = append(c.lifeBuf, p.Life)
		c.sizeBuf = append(c.sizeBuf, p.Size*p.Life)
		c.speedBuf = append(c.speedBuf, math.Hypot(p.VelX, p.VelY))

		switch p.Shape {
		case systems.ShapeDisc:
			stats.Discs++
		case systems.ShapeStar:
			stats.Stars++
		case systems.ShapeDiamond:
			stats.Diamonds++
		case systems.ShapeRing:
			stats.Rings++
		}
	}

	stats.LifeMean, stats.LifeP10, stats.LifeP50, stats.LifeP90 = ComputeDistribution(c.lifeBuf)
	stats.SizeMean, stats.SizeStd = ComputeSpread(c.sizeBuf)
	stats.SpeedMean, _, _, stats.SpeedP90 = ComputeDistribution(c.speedBuf)

	// Reset for next window
	c.windowStartFrame = currentFrame
	c.batches = 0
	c.spawned = 0
	c.expired = 0
	c.skipped = 0
	c.peakLive = 0

	return stats
}

// WindowDurationFrames returns the number of frames per window.
func (c *Collector) WindowDurationFrames() int64 {
	return c.windowDurationFrames
}
