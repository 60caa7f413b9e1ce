package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/vector"
)

// RasterSurface draws into an in-memory RGBA image.
// Used for headless runs, frame dumps and tests.
type RasterSurface struct {
	img      *image.RGBA
	z        *vector.Rasterizer
	src      *image.Uniform
	segments int
}

// NewRasterSurface creates a transparent w x h surface.
// segments controls how finely circles are approximated.
func NewRasterSurface(w, h, segments int) *RasterSurface {
	w, h = max(w, 1), max(h, 1)
	return &RasterSurface{
		img:      image.NewRGBA(image.Rect(0, 0, w, h)),
		z:        vector.NewRasterizer(w, h),
		src:      image.NewUniform(color.NRGBA{}),
		segments: max(segments, 3),
	}
}

// Clear resets every pixel to transparent.
func (s *RasterSurface) Clear() {
	clear(s.img.Pix)
}

// Size returns the surface dimensions.
func (s *RasterSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize reallocates the backing image when the dimensions change.
// Contents are discarded.
func (s *RasterSurface) Resize(w, h int) {
	w, h = max(w, 1), max(h, 1)
	if cw, ch := s.Size(); cw == w && ch == h {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// FillCircle fills a circle of radius r.
func (s *RasterSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	if r <= 0 || !s.visible(x, y, r) {
		return
	}
	s.begin()
	s.circlePath(x, y, r, false)
	s.fill(c)
}

// StrokeCircle outlines a circle of radius r with the given stroke width,
// centred on the radius.
func (s *RasterSurface) StrokeCircle(x, y, r, width float64, c color.NRGBA) {
	outer := r + width/2
	if r <= 0 || !s.visible(x, y, outer) {
		return
	}
	s.begin()
	s.circlePath(x, y, outer, false)
	// Opposite winding cuts the hole out
	if inner := r - width/2; inner > 0 {
		s.circlePath(x, y, inner, true)
	}
	s.fill(c)
}

// FillPolygon fills a closed polygon.
func (s *RasterSurface) FillPolygon(pts []Point, c color.NRGBA) {
	if len(pts) < 3 {
		return
	}
	s.begin()
	s.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		s.z.LineTo(float32(p.X), float32(p.Y))
	}
	s.z.ClosePath()
	s.fill(c)
}

// Image returns the backing image. It is reused across frames.
func (s *RasterSurface) Image() *image.RGBA {
	return s.img
}

// At returns the non-premultiplied colour of a pixel.
func (s *RasterSurface) At(x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(s.img.At(x, y)).(color.NRGBA)
}

// EncodePNG writes the current frame as PNG.
func (s *RasterSurface) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	return nil
}

// WritePNG saves the current frame to path.
func (s *RasterSurface) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}
	if err := s.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *RasterSurface) begin() {
	w, h := s.Size()
	s.z.Reset(w, h)
	s.z.DrawOp = draw.Over
}

func (s *RasterSurface) fill(c color.NRGBA) {
	s.src.C = c
	s.z.Draw(s.img, s.img.Bounds(), s.src, image.Point{})
}

func (s *RasterSurface) circlePath(x, y, r float64, reverse bool) {
	n := s.segments
	step := 2 * math.Pi / float64(n)
	if reverse {
		step = -step
	}
	s.z.MoveTo(float32(x+r), float32(y))
	for i := 1; i < n; i++ {
		a := step * float64(i)
		s.z.LineTo(float32(x+math.Cos(a)*r), float32(y+math.Sin(a)*r))
	}
	s.z.ClosePath()
}

// visible reports whether a shape with the given bounding radius touches the surface.
func (s *RasterSurface) visible(x, y, r float64) bool {
	w, h := s.Size()
	return x+r >= 0 && y+r >= 0 && x-r <= float64(w) && y-r <= float64(h)
}
