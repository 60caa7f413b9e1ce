package ui

import (
	"testing"
	"time"

	"github.com/pthm-cable/trail/telemetry"
)

func TestHUDTracksPeak(t *testing.T) {
	h := NewHUD(0, 0, 200)

	h.Observe(12)
	h.Observe(30)
	h.Observe(4)

	rows := h.rows(HUDData{Live: 4})
	if rows[0].value != "4 (peak 30)" {
		t.Errorf("live row = %q, want %q", rows[0].value, "4 (peak 30)")
	}

	h.ResetPeak()
	rows = h.rows(HUDData{Live: 4})
	if rows[0].value != "4 (peak 0)" {
		t.Errorf("after reset live row = %q", rows[0].value)
	}
}

func TestHUDPerfRowsNeedAWindow(t *testing.T) {
	h := NewHUD(0, 0, 200)

	if n := len(h.rows(HUDData{})); n != 4 {
		t.Errorf("rows without perf = %d, want 4", n)
	}

	data := HUDData{Perf: telemetry.PerfStats{AvgTickDuration: 1500 * time.Microsecond, Overruns: 2}}
	rows := h.rows(data)
	if len(rows) != 6 {
		t.Fatalf("rows with perf = %d, want 6", len(rows))
	}
	if rows[4].value != "1.5ms" || rows[5].value != "2" {
		t.Errorf("perf rows = %q, %q", rows[4].value, rows[5].value)
	}
}

func TestHUDLoad(t *testing.T) {
	h := NewHUD(0, 0, 200)

	data := HUDData{Perf: telemetry.PerfStats{AvgTickDuration: 4 * time.Millisecond}, Budget: 16 * time.Millisecond}
	if got := h.load(data); got != 0.25 {
		t.Errorf("load = %v, want 0.25", got)
	}
	if got := h.load(HUDData{}); got != 0 {
		t.Errorf("load without budget = %v, want 0", got)
	}
}
