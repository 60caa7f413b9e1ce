// Package renderer draws trail particles onto a drawing surface.
package renderer

import "image/color"

// Point is a surface coordinate in pixels.
type Point struct {
	X, Y float64
}

// Surface is the drawing target the particle renderer paints on.
// Colours are non-premultiplied; backends handle their own compositing.
type Surface interface {
	Clear()
	Size() (w, h int)
	Resize(w, h int)
	FillCircle(x, y, r float64, c color.NRGBA)
	StrokeCircle(x, y, r, width float64, c color.NRGBA)
	// FillPolygon fills a closed polygon. Polygons passed by the renderer are
	// star-shaped around their centroid.
	FillPolygon(pts []Point, c color.NRGBA)
}

// Presenter is implemented by surfaces that need an explicit flush after drawing.
type Presenter interface {
	Present()
}
