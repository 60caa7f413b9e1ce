package host

import (
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
)

// Window is a raylib overlay window. It is both the Host and the FrameScheduler:
// Run polls input and calls the frame callback once per vsync-limited loop.
// All methods except Stop must be called from the goroutine that opened it.
type Window struct {
	surface *renderer.RaylibSurface
	pointer listenerSet[systems.PointerSample]
	resize  listenerSet[size]

	frame   func(now time.Time)
	overlay func()
	stopped atomic.Bool

	lastX, lastY float32
	havePos      bool
}

// OpenWindow creates the raylib window.
func OpenWindow(screen config.ScreenConfig, render config.RenderConfig) *Window {
	var flags uint32 = rl.FlagVsyncHint | rl.FlagWindowResizable
	if screen.Transparent {
		flags |= rl.FlagWindowTransparent | rl.FlagWindowUndecorated | rl.FlagWindowTopmost
	}
	if screen.Passthrough {
		flags |= rl.FlagWindowMousePassthrough
	}

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.SetConfigFlags(flags)
	rl.InitWindow(int32(screen.Width), int32(screen.Height), screen.Title)
	rl.SetTargetFPS(int32(screen.TargetFPS))

	return &Window{
		surface: renderer.NewRaylibSurface(render.ScreenBlend, render.CircleSegments),
	}
}

// Close destroys the window.
func (w *Window) Close() {
	rl.CloseWindow()
}

// OnPointerMove registers a pointer-move listener.
func (w *Window) OnPointerMove(fn func(systems.PointerSample)) func() {
	return w.pointer.add(fn)
}

// OnResize registers a resize listener.
func (w *Window) OnResize(fn func(w, h int)) func() {
	return w.resize.add(func(s size) { fn(s.w, s.h) })
}

// Surface returns nil while the window is minimized.
func (w *Window) Surface() renderer.Surface {
	if rl.IsWindowMinimized() {
		return nil
	}
	return w.surface
}

// HasHover is always true for a desktop mouse.
func (w *Window) HasHover() bool {
	return true
}

// Start records the frame callback; Run drives it.
func (w *Window) Start(frame func(now time.Time)) {
	w.frame = frame
}

// SetOverlay sets a callback drawn each loop after the trail, with normal
// blending.
func (w *Window) SetOverlay(fn func()) {
	w.overlay = fn
}

// Stop makes Run return after the current iteration.
func (w *Window) Stop() {
	w.stopped.Store(true)
}

// Run loops until the window is closed, Stop is called or done is closed.
func (w *Window) Run(done <-chan struct{}) {
	for !rl.WindowShouldClose() && !w.stopped.Load() {
		select {
		case <-done:
			return
		default:
		}

		now := time.Now()
		w.pollPointer(now)
		if rl.IsWindowResized() {
			w.resize.dispatch(size{rl.GetScreenWidth(), rl.GetScreenHeight()})
		}

		rl.BeginDrawing()
		w.surface.BeginScreenBlend()
		if w.frame != nil && !w.stopped.Load() {
			w.frame(now)
		}
		w.surface.EndScreenBlend()
		if w.overlay != nil {
			w.overlay()
		}
		rl.EndDrawing()
	}
}

func (w *Window) pollPointer(now time.Time) {
	if !rl.IsCursorOnScreen() {
		return
	}
	pos := rl.GetMousePosition()
	if w.havePos && pos.X == w.lastX && pos.Y == w.lastY {
		return
	}
	w.lastX, w.lastY = pos.X, pos.Y
	w.havePos = true
	w.pointer.dispatch(systems.PointerSample{X: float64(pos.X), Y: float64(pos.Y), Time: now})
}
