package renderer

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

const halfBlock = '▀'

// TermSurface renders into a terminal using half-block cells.
// Callers draw in pixel units; each cell covers cellW x cellH pixels and shows two
// vertically stacked sub-pixels (foreground = top, background = bottom).
type TermSurface struct {
	screen       tcell.Screen
	raster       *RasterSurface
	cellW, cellH float64
	scaleX       float64
	scaleY       float64
	scratch      []Point
}

// NewTermSurface wraps an initialised tcell screen.
func NewTermSurface(screen tcell.Screen, cellW, cellH float64, segments int) *TermSurface {
	cols, rows := screen.Size()
	return &TermSurface{
		screen: screen,
		raster: NewRasterSurface(cols, rows*2, segments),
		cellW:  cellW,
		cellH:  cellH,
		scaleX: 1 / cellW,
		scaleY: 2 / cellH,
	}
}

// Clear resets the sub-pixel buffer.
func (s *TermSurface) Clear() {
	s.raster.Clear()
}

// Size returns the terminal size in pixel units.
func (s *TermSurface) Size() (int, int) {
	cols, rows := s.raster.Size()
	return int(float64(cols) * s.cellW), int(float64(rows/2) * s.cellH)
}

// Resize matches the sub-pixel buffer to a viewport of w x h pixel units.
func (s *TermSurface) Resize(w, h int) {
	cols := int(math.Ceil(float64(w) / s.cellW))
	rows := int(math.Ceil(float64(h) / s.cellH))
	s.raster.Resize(cols, rows*2)
}

// FillCircle fills a circle given in pixel units.
func (s *TermSurface) FillCircle(x, y, r float64, c color.NRGBA) {
	s.raster.FillCircle(x*s.scaleX, y*s.scaleY, r*s.scaleX, c)
}

// StrokeCircle outlines a circle given in pixel units.
func (s *TermSurface) StrokeCircle(x, y, r, width float64, c color.NRGBA) {
	// Keep the band at least one sub-pixel wide or it vanishes
	w := max(width*s.scaleX, 1)
	s.raster.StrokeCircle(x*s.scaleX, y*s.scaleY, r*s.scaleX, w, c)
}

// FillPolygon fills a polygon given in pixel units.
func (s *TermSurface) FillPolygon(pts []Point, c color.NRGBA) {
	s.scratch = s.scratch[:0]
	for _, p := range pts {
		s.scratch = append(s.scratch, Point{X: p.X * s.scaleX, Y: p.Y * s.scaleY})
	}
	s.raster.FillPolygon(s.scratch, c)
}

// Present copies the sub-pixel buffer to the terminal and shows it.
func (s *TermSurface) Present() {
	img := s.raster.Image()
	cols, subRows := s.raster.Size()

	for cy := 0; cy < subRows/2; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := img.RGBAAt(cx, cy*2)
			bottom := img.RGBAAt(cx, cy*2+1)

			if top.A == 0 && bottom.A == 0 {
				s.screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault)
				continue
			}

			// RGBA pixels are premultiplied, which is exactly the colour over black
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			s.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	s.screen.Show()
}
