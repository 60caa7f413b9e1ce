package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OpenGL blend constants for the screen blend: src + dst*(1-src).
const (
	glOne              = 1
	glOneMinusSrcColor = 0x0301
	glFuncAdd          = 0x8006
)

// RaylibSurface draws directly to the current raylib framebuffer.
// Calls must happen between rl.BeginDrawing and rl.EndDrawing.
type RaylibSurface struct {
	screenBlend bool
	segments    int32
}

// NewRaylibSurface creates a surface for the open raylib window.
// With screenBlend, colours are premultiplied by alpha so BeginScreenBlend composites them.
func NewRaylibSurface(screenBlend bool, segments int) *RaylibSurface {
	return &RaylibSurface{
		screenBlend: screenBlend,
		segments:    int32(max(segments, 3)),
	}
}

// BeginScreenBlend switches raylib to the screen blend. Pair with EndScreenBlend.
func (s *RaylibSurface) BeginScreenBlend() {
	if !s.screenBlend {
		return
	}
	rl.SetBlendFactors(glOne, glOneMinusSrcColor, glFuncAdd)
	rl.BeginBlendMode(rl.BlendCustom)
}

// EndScreenBlend restores the default blend mode.
func (s *RaylibSurface) EndScreenBlend() {
	if !s.screenBlend {
		return
	}
	rl.EndBlendMode()
}

// Clear fills the framebuffer with transparent black.
func (s *RaylibSurface) Clear() {
	rl.ClearBackground(rl.Blank)
}

// Size returns the window size in screen pixels.
func (s *RaylibSurface) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

// Resize resizes the window when it no longer matches the viewport.
func (s *RaylibSurface) Resize(w, h int) {
	if cw, ch := s.Size(); cw == w && ch == h {
		return
	}
	rl.SetWindowSize(w, h)
}

// FillCircle fills a circle of radius r.
func (s *RaylibSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	rl.DrawCircleV(vec(x, y), float32(r), s.color(c))
}

// StrokeCircle outlines a circle of radius r with a band of the given width.
func (s *RaylibSurface) StrokeCircle(x, y, r, width float64, c color.NRGBA) {
	inner := max(r-width/2, 0)
	rl.DrawRing(vec(x, y), float32(inner), float32(r+width/2), 0, 360, s.segments, s.color(c))
}

// FillPolygon fills the polygon as a triangle fan around its centroid.
func (s *RaylibSurface) FillPolygon(pts []Point, c color.NRGBA) {
	n := len(pts)
	if n < 3 {
		return
	}

	var cx, cy, area float64
	for i, p := range pts {
		q := pts[(i+1)%n]
		cx += p.X
		cy += p.Y
		area += p.X*q.Y - q.X*p.Y
	}
	center := vec(cx/float64(n), cy/float64(n))
	col := s.color(c)

	// raylib wants counter-clockwise triangles on screen; with y down that is
	// negative shoelace area
	for i := range pts {
		a, b := pts[i], pts[(i+1)%n]
		if area > 0 {
			a, b = b, a
		}
		rl.DrawTriangle(center, vec(a.X, a.Y), vec(b.X, b.Y), col)
	}
}

func (s *RaylibSurface) color(c color.NRGBA) color.RGBA {
	if !s.screenBlend {
		return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(uint32(c.R) * a / 255),
		G: uint8(uint32(c.G) * a / 255),
		B: uint8(uint32(c.B) * a / 255),
		A: c.A,
	}
}

func vec(x, y float64) rl.Vector2 {
	return rl.Vector2{X: float32(x), Y: float32(y)}
}
