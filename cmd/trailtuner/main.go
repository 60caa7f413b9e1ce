// Trail tuner - interactive preview of the emitter and particle constants.
//
// Usage: go run ./cmd/trailtuner [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/engine"
	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
	"github.com/pthm-cable/trail/ui"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 700
	panelWidth   = windowWidth - previewSize - 30
)

// tunables is the subset of config the tuner edits and exports.
type tunables struct {
	Emitter  config.EmitterConfig  `yaml:"emitter"`
	Particle config.ParticleConfig `yaml:"particle"`
}

// panel lays out labelled sliders top to bottom.
type panel struct {
	x, y    float32
	changed bool
}

func (p *panel) slider(label string, value *float64, lo, hi float64, format string) {
	rl.DrawText(label, int32(p.x), int32(p.y), 14, rl.Gray)
	p.y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: p.x, Y: p.y, Width: float32(panelWidth - 80), Height: 16},
		"", "",
		float32(*value), float32(lo), float32(hi),
	)
	rl.DrawText(fmt.Sprintf(format, *value), int32(p.x+float32(panelWidth-70)), int32(p.y), 16, rl.DarkGray)
	if v != float32(*value) {
		*value = float64(v)
		p.changed = true
	}
	p.y += 26
}

func (p *panel) intSlider(label string, value *int, lo, hi int) {
	f := float64(*value)
	p.slider(label, &f, float64(lo), float64(hi), "%.0f")
	if int(f) != *value {
		*value = int(f)
		p.changed = true
	}
}

// previewHost feeds the engine from the tuner's own loop. Everything runs on the
// main goroutine, so it needs no locking.
type previewHost struct {
	surface renderer.Surface
	pointer map[int]func(systems.PointerSample)
	nextID  int
}

func (h *previewHost) OnPointerMove(fn func(systems.PointerSample)) func() {
	if h.pointer == nil {
		h.pointer = make(map[int]func(systems.PointerSample))
	}
	id := h.nextID
	h.nextID++
	h.pointer[id] = fn
	return func() { delete(h.pointer, id) }
}

// The preview never resizes.
func (h *previewHost) OnResize(func(w, h int)) func() { return func() {} }

func (h *previewHost) Surface() renderer.Surface { return h.surface }

func (h *previewHost) HasHover() bool { return true }

func (h *previewHost) move(s systems.PointerSample) {
	for _, fn := range h.pointer {
		fn(s)
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "Trail Tuner")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	params := tunables{Emitter: cfg.Emitter, Particle: cfg.Particle}
	defaults := params

	surface := renderer.NewRaylibSurface(cfg.Render.ScreenBlend, cfg.Render.CircleSegments)
	preview := rl.Rectangle{X: 10, Y: 10, Width: previewSize, Height: previewSize}
	host := &previewHost{surface: surface}
	sched := engine.NewManualScheduler(time.Now(), cfg.Derived.FrameInterval)

	eng := engine.New(engine.Options{
		Config:    cfg,
		Host:      host,
		Scheduler: sched,
		Rand:      systems.NewRand(uint64(time.Now().UnixNano())),
	})
	defer eng.Unmount()
	if err := eng.Mount(); err != nil {
		slog.Error("failed to mount preview", "error", err)
		os.Exit(1)
	}

	var validationErr error
	hud := ui.NewHUD(20, 20, 220)
	hud.SetVisible(true)

	for !rl.WindowShouldClose() {
		// Pointer samples only count inside the preview
		mouse := rl.GetMousePosition()
		if rl.CheckCollisionPointRec(mouse, preview) {
			host.move(systems.PointerSample{X: float64(mouse.X), Y: float64(mouse.Y), Time: time.Now()})
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Preview
		rl.BeginScissorMode(int32(preview.X), int32(preview.Y), int32(preview.Width), int32(preview.Height))
		surface.BeginScreenBlend()
		sched.Step()
		surface.EndScreenBlend()
		rl.EndScissorMode()
		rl.DrawRectangleLinesEx(preview, 1, rl.DarkGray)

		hud.HandleInput()
		hud.Draw(ui.HUDData{
			Live:  eng.Store().Count(),
			Hue:   eng.Store().Hue(),
			Frame: eng.Frames(),
			FPS:   rl.GetFPS(),
		})

		// Control panel
		p := &panel{x: float32(previewSize + 20), y: 10}
		rl.DrawText("Trail Parameters", int32(p.x), int32(p.y), 20, rl.DarkGray)
		p.y += 30

		p.slider("Spawn interval (ms)", &params.Emitter.SpawnIntervalMS, 1, 100, "%.0f")
		p.slider("Min pointer speed", &params.Emitter.MinSpeed, 0, 20, "%.1f")
		p.slider("Speed per particle", &params.Emitter.SpeedPerParticle, 1, 40, "%.1f")
		p.intSlider("Max per batch", &params.Emitter.MaxPerBatch, 1, 12)
		p.slider("Size min", &params.Particle.SizeMin, 1, 30, "%.1f")
		p.slider("Size max", &params.Particle.SizeMax, 1, 40, "%.1f")
		p.intSlider("Life min (ticks)", &params.Particle.LifeMin, 1, 200)
		p.intSlider("Life max (ticks)", &params.Particle.LifeMax, 2, 240)
		p.slider("Hint scale", &params.Particle.HintScale, 0, 1, "%.2f")
		p.slider("Jitter", &params.Particle.Jitter, 0, 5, "%.2f")
		p.slider("Drag", &params.Particle.Drag, 0.8, 1, "%.3f")
		p.slider("Gravity", &params.Particle.Gravity, -0.3, 0.3, "%.3f")
		p.slider("Hue step (deg/tick)", &params.Particle.HueStep, 0, 10, "%.2f")

		if p.changed {
			candidate := *cfg
			candidate.Emitter = params.Emitter
			candidate.Particle = params.Particle
			validationErr = candidate.Validate()
			if validationErr == nil {
				eng.SetTuning(params.Emitter, params.Particle)
			}
		}

		p.y += 10
		if gui.Button(rl.Rectangle{X: p.x, Y: p.y, Width: 120, Height: 30}, "Clear Trail") {
			eng.Store().Reset()
			hud.ResetPeak()
		}
		if gui.Button(rl.Rectangle{X: p.x + 130, Y: p.y, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			eng.SetTuning(params.Emitter, params.Particle)
			validationErr = nil
		}
		p.y += 40

		if validationErr != nil {
			rl.DrawText("Invalid: "+firstLine(validationErr), int32(p.x), int32(p.y), 12, rl.Maroon)
		}

		// Instructions
		rl.DrawText("C: copy YAML to clipboard | F3: stats", int32(p.x), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			out, err := yaml.Marshal(params)
			if err != nil {
				slog.Error("marshaling params", "error", err)
			} else {
				rl.SetClipboardText(string(out))
			}
		}

		rl.EndDrawing()
	}
}

// firstLine trims a joined validation error to its first message.
func firstLine(err error) string {
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
