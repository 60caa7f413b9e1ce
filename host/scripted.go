package host

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
)

// LissajousPath sweeps a pointer across a w x h viewport.
type LissajousPath struct {
	Width, Height float64
	FreqX, FreqY  float64 // Cycles per second
	Phase         float64
	Margin        float64 // Fraction of the viewport kept clear at each edge
}

// DefaultPath returns a 3:2 sweep that fills most of the viewport.
func DefaultPath(w, h int) LissajousPath {
	return LissajousPath{
		Width:  float64(w),
		Height: float64(h),
		FreqX:  0.3,
		FreqY:  0.2,
		Phase:  math.Pi / 2,
		Margin: 0.1,
	}
}

// At returns the pointer position after elapsed time.
func (p LissajousPath) At(elapsed time.Duration) (x, y float64) {
	t := elapsed.Seconds()
	ax := p.Width * (0.5 - p.Margin)
	ay := p.Height * (0.5 - p.Margin)
	x = p.Width/2 + ax*math.Sin(2*math.Pi*p.FreqX*t+p.Phase)
	y = p.Height/2 + ay*math.Sin(2*math.Pi*p.FreqY*t)
	return x, y
}

// Scripted replays a synthetic pointer path against an in-memory raster surface.
type Scripted struct {
	surface *renderer.RasterSurface
	path    LissajousPath
	hover   bool
	start   time.Time
	started bool

	unavailable atomic.Bool

	pointer listenerSet[systems.PointerSample]
	resize  listenerSet[size]
}

// NewScripted creates a w x h headless host following path.
func NewScripted(w, h, segments int, path LissajousPath, hover bool) *Scripted {
	return &Scripted{
		surface: renderer.NewRasterSurface(w, h, segments),
		path:    path,
		hover:   hover,
	}
}

// OnPointerMove registers a pointer-move listener.
func (s *Scripted) OnPointerMove(fn func(systems.PointerSample)) func() {
	return s.pointer.add(fn)
}

// OnResize registers a resize listener.
func (s *Scripted) OnResize(fn func(w, h int)) func() {
	return s.resize.add(func(sz size) { fn(sz.w, sz.h) })
}

// Surface returns the raster surface, or nil while marked unavailable.
func (s *Scripted) Surface() renderer.Surface {
	if s.unavailable.Load() {
		return nil
	}
	return s.surface
}

// HasHover reports the configured capability.
func (s *Scripted) HasHover() bool {
	return s.hover
}

// Raster exposes the backing image for frame dumps.
func (s *Scripted) Raster() *renderer.RasterSurface {
	return s.surface
}

// SetAvailable simulates the surface disappearing and coming back.
func (s *Scripted) SetAvailable(ok bool) {
	s.unavailable.Store(!ok)
}

// Advance moves the pointer to its position at now. The first call fixes the
// path's time origin.
func (s *Scripted) Advance(now time.Time) {
	if !s.started {
		s.start = now
		s.started = true
	}
	x, y := s.path.At(now.Sub(s.start))
	s.pointer.dispatch(systems.PointerSample{X: x, Y: y, Time: now})
}

// Resize reports a new viewport size to listeners and retargets the path.
func (s *Scripted) Resize(w, h int) {
	s.path.Width, s.path.Height = float64(w), float64(h)
	s.resize.dispatch(size{w, h})
}
