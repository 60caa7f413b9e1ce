package renderer

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/gdamore/tcell/v2"
)

var opaqueRed = color.NRGBA{R: 255, A: 255}

func TestRasterFillCircle(t *testing.T) {
	s := NewRasterSurface(100, 100, 32)
	s.FillCircle(50, 50, 10, opaqueRed)

	if c := s.At(50, 50); c.A != 255 || c.R != 255 {
		t.Errorf("centre pixel = %+v, want opaque red", c)
	}
	if c := s.At(5, 5); c.A != 0 {
		t.Errorf("far pixel = %+v, want transparent", c)
	}
}

func TestRasterStrokeCircleLeavesHole(t *testing.T) {
	s := NewRasterSurface(100, 100, 64)
	s.StrokeCircle(50, 50, 10, 2, opaqueRed)

	if c := s.At(50, 50); c.A != 0 {
		t.Errorf("ring centre = %+v, want transparent", c)
	}
	if c := s.At(59, 50); c.A == 0 {
		t.Error("expected ring band to cover pixel (59, 50)")
	}
	if c := s.At(65, 50); c.A != 0 {
		t.Errorf("pixel outside ring = %+v, want transparent", c)
	}
}

func TestRasterPolygons(t *testing.T) {
	s := NewRasterSurface(100, 100, 32)
	s.FillPolygon(StarVertices(nil, 30, 30, 10, 5, 5), opaqueRed)
	s.FillPolygon(DiamondVertices(nil, 70, 70, 8), opaqueRed)

	if c := s.At(30, 30); c.A == 0 {
		t.Error("expected star centre to be filled")
	}
	if c := s.At(70, 70); c.A == 0 {
		t.Error("expected diamond centre to be filled")
	}
	// Diamond corners region outside the rhombus
	if c := s.At(63, 63); c.A != 0 {
		t.Errorf("pixel outside diamond = %+v, want transparent", c)
	}
}

func TestRasterHalfAlphaBlends(t *testing.T) {
	s := NewRasterSurface(20, 20, 32)
	s.FillCircle(10, 10, 5, color.NRGBA{G: 255, A: 128})

	c := s.Image().RGBAAt(10, 10)
	if c.A != 128 {
		t.Errorf("alpha = %d, want 128", c.A)
	}
}

func TestRasterClearAndResize(t *testing.T) {
	s := NewRasterSurface(10, 10, 16)
	s.FillCircle(5, 5, 3, opaqueRed)
	s.Clear()

	if c := s.At(5, 5); c.A != 0 {
		t.Errorf("pixel after clear = %+v, want transparent", c)
	}

	s.Resize(40, 30)
	if w, h := s.Size(); w != 40 || h != 30 {
		t.Errorf("size after resize = %dx%d, want 40x30", w, h)
	}

	// Drawing after resize uses the new bounds
	s.FillCircle(35, 25, 2, opaqueRed)
	if c := s.At(35, 25); c.A == 0 {
		t.Error("expected pixel in resized area to be filled")
	}
}

func TestRasterOffscreenShapesAreSkipped(t *testing.T) {
	s := NewRasterSurface(10, 10, 16)
	s.FillCircle(-100, -100, 5, opaqueRed)
	s.StrokeCircle(500, 500, 5, 2, opaqueRed)

	for _, b := range s.Image().Pix {
		if b != 0 {
			t.Fatal("offscreen shapes touched the image")
		}
	}
}

func TestRasterEncodePNG(t *testing.T) {
	s := NewRasterSurface(32, 16, 16)
	s.FillCircle(8, 8, 4, opaqueRed)

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decoding PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("decoded size = %dx%d, want 32x16", b.Dx(), b.Dy())
	}
}

func TestTermSurfacePresent(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(20, 10)

	s := NewTermSurface(screen, 8, 16, 32)
	if w, h := s.Size(); w != 160 || h != 160 {
		t.Fatalf("pixel size = %dx%d, want 160x160", w, h)
	}

	// Pixel (84, 84) maps to sub-pixel (10.5, 10.5), i.e. cell (10, 5)
	s.Clear()
	s.FillCircle(84, 84, 16, opaqueRed)
	s.Present()

	mainc, _, _, _ := screen.GetContent(10, 5)
	if mainc != halfBlock {
		t.Errorf("cell (10,5) = %q, want half block", mainc)
	}
	mainc, _, _, _ = screen.GetContent(0, 0)
	if mainc != ' ' {
		t.Errorf("cell (0,0) = %q, want blank", mainc)
	}
}

func TestTermSurfaceResize(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(10, 5)

	s := NewTermSurface(screen, 8, 16, 16)
	s.Resize(320, 160)

	if w, h := s.Size(); w != 320 || h != 160 {
		t.Errorf("pixel size after resize = %dx%d, want 320x160", w, h)
	}
}
