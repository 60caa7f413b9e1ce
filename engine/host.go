package engine

import (
	"time"

	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
)

// Host is the environment the engine mounts into.
type Host interface {
	// OnPointerMove registers a pointer-move listener and returns its remover.
	OnPointerMove(fn func(systems.PointerSample)) (remove func())

	// OnResize registers a viewport-resize listener and returns its remover.
	OnResize(fn func(w, h int)) (remove func())

	// Surface returns the drawing surface, or nil while it is unavailable.
	Surface() renderer.Surface

	// HasHover reports whether the host has a hover-capable pointer.
	HasHover() bool
}

// FrameScheduler invokes a frame callback roughly once per display refresh.
// Stop must not be called from inside the callback.
type FrameScheduler interface {
	Start(frame func(now time.Time))
	Stop()
}
