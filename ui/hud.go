package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/telemetry"
)

// HUDData holds everything the trail HUD shows for one frame.
type HUDData struct {
	Live   int
	Hue    float64
	Frame  int64
	FPS    int32
	Perf   telemetry.PerfStats // Last flushed perf window
	Budget time.Duration
}

type hudRow struct {
	label, value string
}

// HUD renders a toggleable stats panel in the top-left corner.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	peak     int
}

// NewHUD creates a hidden HUD at x, y.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Toggle switches visibility and returns the new state.
func (h *HUD) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// HandleInput toggles the HUD on F3.
func (h *HUD) HandleInput() {
	if rl.IsKeyPressed(rl.KeyF3) {
		h.Toggle()
	}
}

// SetVisible shows or hides the HUD.
func (h *HUD) SetVisible(visible bool) {
	h.visible = visible
}

// ResetPeak forgets the peak live count, e.g. after the trail is cleared.
func (h *HUD) ResetPeak() {
	h.peak = 0
}

// Observe updates the running peak. Draw calls it, so only hidden HUDs need it.
func (h *HUD) Observe(live int) {
	h.peak = max(h.peak, live)
}

func (h *HUD) rows(data HUDData) []hudRow {
	rows := []hudRow{
		{"Live", fmt.Sprintf("%d (peak %d)", data.Live, h.peak)},
		{"Hue", fmt.Sprintf("%.1f", data.Hue)},
		{"Frame", fmt.Sprintf("%d", data.Frame)},
		{"FPS", fmt.Sprintf("%d", data.FPS)},
	}
	if data.Perf.AvgTickDuration > 0 {
		rows = append(rows,
			hudRow{"Work", data.Perf.AvgTickDuration.Round(time.Microsecond).String()},
			hudRow{"Overruns", fmt.Sprintf("%d", data.Perf.Overruns)},
		)
	}
	return rows
}

// load is the average frame work as a fraction of the budget.
func (h *HUD) load(data HUDData) float64 {
	if data.Budget <= 0 {
		return 0
	}
	return float64(data.Perf.AvgTickDuration) / float64(data.Budget)
}

// Draw renders the HUD if visible.
func (h *HUD) Draw(data HUDData) {
	h.Observe(data.Live)
	if !h.visible {
		return
	}

	r := h.renderer
	rows := h.rows(data)
	height := r.Theme.Padding*2 + r.Theme.LineHeight + 2 + int32(len(rows))*r.Theme.LineHeight
	if data.Budget > 0 {
		height += r.Theme.LineHeight + 2
	}
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, h.y+r.Theme.Padding, "Trail")
	for _, row := range rows {
		y = r.DrawLabelValue(x, y, row.label, row.value)
	}
	if data.Budget > 0 {
		r.DrawLoadBar(x, y, "Load", h.load(data), h.width-2*r.Theme.Padding)
	}
}
