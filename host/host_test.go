package host

import (
	"math"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/systems"
)

func TestListenerSetRemove(t *testing.T) {
	var l listenerSet[int]
	var a, b int

	removeA := l.add(func(v int) { a += v })
	l.add(func(v int) { b += v })

	l.dispatch(1)
	removeA()
	removeA() // second call is harmless
	l.dispatch(1)

	if a != 1 || b != 2 {
		t.Errorf("a=%d b=%d, want 1 and 2", a, b)
	}
	if n := l.len(); n != 1 {
		t.Errorf("len = %d, want 1", n)
	}
}

func TestListenerCanRemoveItselfDuringDispatch(t *testing.T) {
	var l listenerSet[int]
	calls := 0
	var remove func()
	remove = l.add(func(int) {
		calls++
		remove()
	})

	l.dispatch(0)
	l.dispatch(0)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestLissajousPathStaysInBounds(t *testing.T) {
	p := DefaultPath(400, 300)

	for i := 0; i < 1000; i++ {
		x, y := p.At(time.Duration(i) * 17 * time.Millisecond)
		if x < 40-1e-9 || x > 360+1e-9 || y < 30-1e-9 || y > 270+1e-9 {
			t.Fatalf("point %d (%v, %v) outside the margin box", i, x, y)
		}
	}
}

func TestScriptedDispatchesPath(t *testing.T) {
	s := NewScripted(400, 300, 16, DefaultPath(400, 300), true)

	var samples []systems.PointerSample
	remove := s.OnPointerMove(func(ps systems.PointerSample) { samples = append(samples, ps) })

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Advance(base)
	s.Advance(base.Add(time.Second / 60))

	if len(samples) != 2 {
		t.Fatalf("samples = %d, want 2", len(samples))
	}
	// Phase pi/2 starts the sweep at the right-hand extreme
	if math.Abs(samples[0].X-360) > 1e-9 || math.Abs(samples[0].Y-150) > 1e-9 {
		t.Errorf("first sample = (%v, %v), want (360, 150)", samples[0].X, samples[0].Y)
	}
	if speed := math.Hypot(samples[1].X-samples[0].X, samples[1].Y-samples[0].Y); speed <= 2 {
		t.Errorf("per-frame pointer speed %v too slow to spawn", speed)
	}

	remove()
	s.Advance(base.Add(time.Second / 30))
	if len(samples) != 2 {
		t.Error("removed listener still called")
	}
}

func TestScriptedSurfaceAvailability(t *testing.T) {
	s := NewScripted(10, 10, 8, DefaultPath(10, 10), false)

	if s.HasHover() {
		t.Error("HasHover = true, want false")
	}
	if s.Surface() == nil {
		t.Fatal("surface unavailable by default")
	}
	s.SetAvailable(false)
	if s.Surface() != nil {
		t.Error("surface still returned while unavailable")
	}
	s.SetAvailable(true)

	var gotW, gotH int
	s.OnResize(func(w, h int) { gotW, gotH = w, h })
	s.Resize(64, 48)
	if gotW != 64 || gotH != 48 {
		t.Errorf("resize listener got %dx%d, want 64x48", gotW, gotH)
	}
}

func newSimTerminal(t *testing.T, assumeMouse bool) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	cfg := config.Default().Terminal
	term, err := NewTerminal(screen, cfg, 16, assumeMouse)
	if err != nil {
		t.Fatalf("NewTerminal: %v", err)
	}
	t.Cleanup(term.Close)
	return term, screen
}

func TestTerminalMouseInPixelUnits(t *testing.T) {
	term, screen := newSimTerminal(t, true)

	got := make(chan systems.PointerSample, 1)
	term.OnPointerMove(func(ps systems.PointerSample) { got <- ps })

	screen.InjectMouse(3, 2, tcell.ButtonNone, tcell.ModNone)

	select {
	case ps := <-got:
		// Cell centre times the 8x16 default cell size
		if ps.X != 28 || ps.Y != 40 {
			t.Errorf("sample = (%v, %v), want (28, 40)", ps.X, ps.Y)
		}
		if ps.Time.IsZero() {
			t.Error("sample has no timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("no pointer sample delivered")
	}
}

func TestTerminalResizeInPixelUnits(t *testing.T) {
	term, screen := newSimTerminal(t, true)

	got := make(chan [2]int, 1)
	term.OnResize(func(w, h int) { got <- [2]int{w, h} })

	if err := screen.PostEvent(tcell.NewEventResize(40, 12)); err != nil {
		t.Fatalf("PostEvent: %v", err)
	}

	select {
	case sz := <-got:
		if sz != [2]int{320, 192} {
			t.Errorf("resize = %v, want [320 192]", sz)
		}
	case <-time.After(time.Second):
		t.Fatal("no resize delivered")
	}
}

func TestTerminalQuitKey(t *testing.T) {
	term, screen := newSimTerminal(t, true)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case <-term.Quit():
	case <-time.After(time.Second):
		t.Fatal("quit not signalled")
	}
}

func TestTerminalHoverGate(t *testing.T) {
	// The simulation screen reports no mouse support
	term, _ := newSimTerminal(t, false)
	if term.HasHover() {
		t.Error("HasHover = true without mouse support")
	}

	forced, _ := newSimTerminal(t, true)
	if !forced.HasHover() {
		t.Error("HasHover = false with assumeMouse")
	}
}
