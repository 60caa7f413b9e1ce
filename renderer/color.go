package renderer

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// TrailColor converts a particle hue and remaining life into a display colour.
// saturation and lightness are fractions in [0, 1]; alpha is the particle's life.
func TrailColor(hue int, saturation, lightness, alpha float64) color.NRGBA {
	r, g, b := colorful.Hsl(float64(hue), saturation, lightness).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alphaByte(alpha)}
}

func alphaByte(a float64) uint8 {
	if a <= 0 {
		return 0
	}
	if a >= 1 {
		return 255
	}
	return uint8(math.Round(a * 255))
}
