package host

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
)

// Terminal hosts a trail in a tcell screen. Pointer positions are reported in
// pixel units (cell centre times cell size) so the emitter thresholds keep their
// meaning.
type Terminal struct {
	screen      tcell.Screen
	surface     *renderer.TermSurface
	cellW       float64
	cellH       float64
	assumeMouse bool

	pointer listenerSet[systems.PointerSample]
	resize  listenerSet[size]

	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

// NewTerminal initialises screen, enables mouse motion reporting and starts the
// event loop. assumeMouse overrides the terminal's own mouse detection.
func NewTerminal(screen tcell.Screen, cfg config.TerminalConfig, segments int, assumeMouse bool) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{
		screen:      screen,
		surface:     renderer.NewTermSurface(screen, cfg.CellWidth, cfg.CellHeight, segments),
		cellW:       cfg.CellWidth,
		cellH:       cfg.CellHeight,
		assumeMouse: assumeMouse,
		quit:        make(chan struct{}),
	}

	t.wg.Add(1)
	go t.pollEvents()
	return t, nil
}

// OnPointerMove registers a pointer-move listener. Listeners run on the event goroutine.
func (t *Terminal) OnPointerMove(fn func(systems.PointerSample)) func() {
	return t.pointer.add(fn)
}

// OnResize registers a resize listener, with sizes in pixel units.
func (t *Terminal) OnResize(fn func(w, h int)) func() {
	return t.resize.add(func(s size) { fn(s.w, s.h) })
}

// Surface returns the half-block terminal surface.
func (t *Terminal) Surface() renderer.Surface {
	return t.surface
}

// HasHover reports whether the terminal reports mouse motion.
func (t *Terminal) HasHover() bool {
	return t.assumeMouse || t.screen.HasMouse()
}

// Quit is closed when the user presses Escape, q or Ctrl-C.
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

// Close restores the terminal and waits for the event loop to exit.
func (t *Terminal) Close() {
	t.screen.Fini()
	t.wg.Wait()
}

func (t *Terminal) pollEvents() {
	defer t.wg.Done()

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventMouse:
			cx, cy := ev.Position()
			t.pointer.dispatch(systems.PointerSample{
				X:    (float64(cx) + 0.5) * t.cellW,
				Y:    (float64(cy) + 0.5) * t.cellH,
				Time: ev.When(),
			})

		case *tcell.EventResize:
			t.screen.Sync()
			cols, rows := ev.Size()
			t.resize.dispatch(size{int(float64(cols) * t.cellW), int(float64(rows) * t.cellH)})

		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
				t.quitOnce.Do(func() { close(t.quit) })
			}
		}
	}
}
