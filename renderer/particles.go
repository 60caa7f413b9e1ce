package renderer

import (
	"math"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/systems"
)

// ParticleRenderer renders trail particles.
type ParticleRenderer struct {
	saturation  float64
	lightness   float64
	strokeWidth float64
	starPoints  int

	verts []Point // reused polygon scratch
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer(cfg config.RenderConfig) *ParticleRenderer {
	return &ParticleRenderer{
		saturation:  cfg.Saturation,
		lightness:   cfg.Lightness,
		strokeWidth: cfg.StrokeWidth,
		starPoints:  cfg.StarPoints,
		verts:       make([]Point, 0, cfg.StarPoints*2),
	}
}

// Draw clears the surface and renders all particles in collection order.
func (r *ParticleRenderer) Draw(s Surface, particles []systems.Particle) {
	s.Clear()

	for i := range particles {
		r.drawParticle(s, &particles[i])
	}
}

func (r *ParticleRenderer) drawParticle(s Surface, p *systems.Particle) {
	// Shrink and fade with remaining life
	size := p.Size * p.Life
	c := TrailColor(p.Hue, r.saturation, r.lightness, p.Life)

	switch p.Shape {
	case systems.ShapeStar:
		r.verts = StarVertices(r.verts[:0], p.X, p.Y, size, size/2, r.starPoints)
		s.FillPolygon(r.verts, c)
	case systems.ShapeDiamond:
		r.verts = DiamondVertices(r.verts[:0], p.X, p.Y, size)
		s.FillPolygon(r.verts, c)
	case systems.ShapeRing:
		s.StrokeCircle(p.X, p.Y, size, r.strokeWidth, c)
	default:
		s.FillCircle(p.X, p.Y, size, c)
	}
}

// StarVertices appends the outline of a star with the given number of points,
// alternating outer and inner radius and starting straight up.
func StarVertices(dst []Point, x, y, outer, inner float64, points int) []Point {
	rot := math.Pi / 2 * 3
	step := math.Pi / float64(points)

	for i := 0; i < points; i++ {
		dst = append(dst, Point{X: x + math.Cos(rot)*outer, Y: y + math.Sin(rot)*outer})
		rot += step
		dst = append(dst, Point{X: x + math.Cos(rot)*inner, Y: y + math.Sin(rot)*inner})
		rot += step
	}
	return dst
}

// DiamondVertices appends the four corners of a diamond with half-diagonal s:
// top, right, bottom, left.
func DiamondVertices(dst []Point, x, y, s float64) []Point {
	return append(dst,
		Point{X: x, Y: y - s},
		Point{X: x + s, Y: y},
		Point{X: x, Y: y + s},
		Point{X: x - s, Y: y},
	)
}
