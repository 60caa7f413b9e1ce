package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/engine"
	"github.com/pthm-cable/trail/host"
	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
	"github.com/pthm-cable/trail/telemetry"
	"github.com/pthm-cable/trail/ui"
)

type options struct {
	headless   bool
	terminal   bool
	noHover    bool
	logStats   bool
	seed       int64
	maxTicks   int64
	outputDir  string
	framesDir  string
	frameEvery int64
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run against a scripted pointer without a window")
	terminal := flag.Bool("terminal", false, "Draw the trail in the terminal")
	noHover := flag.Bool("no-hover", false, "Headless only: pretend the pointer is touch-only")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	framesDir := flag.String("frames-dir", "", "Headless only: write rendered frames as PNG")
	frameEvery := flag.Int64("frame-every", 1, "Write every Nth frame to -frames-dir")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := options{
		headless:   *headless,
		terminal:   *terminal,
		noHover:    *noHover,
		logStats:   *logStats,
		seed:       *seed,
		maxTicks:   *maxTicks,
		outputDir:  *outputDir,
		framesDir:  *framesDir,
		frameEvery: max(*frameEvery, 1),
	}
	if opts.seed == 0 {
		opts.seed = time.Now().UnixNano()
	}

	// The terminal host owns stdout, so its logs go to the output directory instead
	var logOut io.Writer = os.Stdout
	if opts.terminal {
		logOut = io.Discard
		if opts.outputDir != "" {
			if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
				slog.Error("failed to create output directory", "error", err)
				os.Exit(1)
			}
			f, err := os.Create(filepath.Join(opts.outputDir, "trail.log"))
			if err != nil {
				slog.Error("failed to create log file", "error", err)
				os.Exit(1)
			}
			defer f.Close()
			logOut = f
		}
	}

	// Set up slog (JSON for structured logging)
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case opts.headless:
		err = runHeadless(ctx, config.Cfg(), opts, logger)
	case opts.terminal:
		err = runTerminal(ctx, config.Cfg(), opts, logger)
	default:
		err = runWindow(ctx, config.Cfg(), opts, logger)
	}
	if err != nil {
		slog.Error("trail stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

// telemetrySink bundles the collectors and CSV output for one run.
type telemetrySink struct {
	perf   *telemetry.PerfCollector
	stats  *telemetry.Collector
	output *telemetry.OutputManager
}

// newTelemetrySink sizes the stats windows for a scheduler running at fps.
func newTelemetrySink(cfg *config.Config, opts options, fps float64, logger *slog.Logger) (*telemetrySink, error) {
	om, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return nil, err
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	stats := telemetry.NewCollector(cfg.Telemetry.StatsWindow, fps)
	logger.Debug("telemetry windows",
		"stats_window_frames", stats.WindowDurationFrames(),
		"perf_window_frames", cfg.Telemetry.PerfWindow,
	)

	return &telemetrySink{
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow, cfg.Derived.FrameBudget),
		stats:  stats,
		output: om,
	}, nil
}

func (t *telemetrySink) onWindow(logStats bool) func(telemetry.WindowStats, telemetry.PerfStats) {
	return func(ws telemetry.WindowStats, ps telemetry.PerfStats) {
		if logStats {
			ws.LogStats()
			ps.LogStats()
		}
		if err := t.output.WriteTelemetry(ws); err != nil {
			slog.Warn("telemetry write failed", "error", err)
		}
		if err := t.output.WritePerf(ps, ws.WindowEndFrame); err != nil {
			slog.Warn("perf write failed", "error", err)
		}
	}
}

func (t *telemetrySink) Close() {
	if err := t.output.Close(); err != nil {
		slog.Warn("closing output", "error", err)
	}
}

func engineOptions(cfg *config.Config, opts options, logger *slog.Logger, sink *telemetrySink) engine.Options {
	return engine.Options{
		Config:    cfg,
		Rand:      systems.NewRand(uint64(opts.seed)),
		Logger:    logger,
		Perf:      sink.perf,
		Stats:     sink.stats,
		OnWindow:  sink.onWindow(opts.logStats),
		MaxFrames: opts.maxTicks,
	}
}

// mount starts the engine. A host without hover leaves the trail idle, which is
// not an error.
func mount(eng *engine.ParticleEngine, logger *slog.Logger) (bool, error) {
	err := eng.Mount()
	switch {
	case errors.Is(err, engine.ErrNoHover):
		logger.Info("no hover-capable pointer, trail stays idle")
		return false, nil
	case err != nil:
		return false, fmt.Errorf("mounting trail: %w", err)
	}
	return true, nil
}

// runHeadless drives the engine frame by frame against a scripted pointer.
func runHeadless(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	sink, err := newTelemetrySink(cfg, opts, float64(cfg.Screen.TargetFPS), logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	if opts.framesDir != "" {
		if err := os.MkdirAll(opts.framesDir, 0755); err != nil {
			return fmt.Errorf("creating frames directory: %w", err)
		}
	}

	w, h := cfg.Screen.Width, cfg.Screen.Height
	scripted := host.NewScripted(w, h, cfg.Render.CircleSegments, host.DefaultPath(w, h), !opts.noHover)
	sched := engine.NewManualScheduler(time.Unix(0, 0), cfg.Derived.FrameInterval)

	eo := engineOptions(cfg, opts, logger, sink)
	eo.Host = scripted
	eo.Scheduler = sched
	if opts.framesDir != "" {
		eo.OnFrame = func(frame int64, _ renderer.Surface) {
			if frame%opts.frameEvery != 0 {
				return
			}
			path := filepath.Join(opts.framesDir, fmt.Sprintf("frame_%06d.png", frame))
			if err := scripted.Raster().WritePNG(path); err != nil {
				logger.Warn("frame dump failed", "frame", frame, "error", err)
			}
		}
	}

	eng := engine.New(eo)
	defer eng.Unmount()
	if ok, err := mount(eng, logger); !ok {
		return err
	}

	logger.Info("starting headless run",
		"seed", opts.seed,
		"max_ticks", opts.maxTicks,
		"width", w,
		"height", h,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("interrupted", "frame", eng.Frames())
			saveSnapshot(eng, cfg, opts, logger)
			return nil
		case <-eng.Done():
			logger.Info("max ticks reached", "frame", eng.Frames())
			saveSnapshot(eng, cfg, opts, logger)
			return nil
		default:
		}

		// Pointer first so this frame drains what it produced
		scripted.Advance(sched.Now().Add(cfg.Derived.FrameInterval))
		sched.Step()
	}
}

// saveSnapshot dumps the final trail next to the CSV logs.
func saveSnapshot(eng *engine.ParticleEngine, cfg *config.Config, opts options, logger *slog.Logger) {
	if opts.outputDir == "" {
		return
	}
	store := eng.Store()
	snap := telemetry.NewSnapshot(opts.seed, cfg.Screen.Width, cfg.Screen.Height, eng.Frames(), store.Hue(), store.Particles())
	path, err := telemetry.SaveSnapshot(snap, opts.outputDir)
	if err != nil {
		logger.Warn("snapshot failed", "error", err)
		return
	}
	logger.Info("snapshot saved", "path", path, "particles", len(snap.Particles))
}

// runTerminal draws the trail into the current terminal until quit.
func runTerminal(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	fps := cfg.Terminal.FPS
	if fps <= 0 {
		fps = 30
	}

	// Windows follow the terminal ticker, not the window frame rate
	sink, err := newTelemetrySink(cfg, opts, float64(fps), logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	term, err := host.NewTerminal(screen, cfg.Terminal, cfg.Render.CircleSegments, false)
	if err != nil {
		return err
	}
	defer term.Close()

	eo := engineOptions(cfg, opts, logger, sink)
	eo.Host = term
	eo.Scheduler = engine.NewTickerScheduler(time.Second / time.Duration(fps))

	eng := engine.New(eo)
	defer eng.Unmount()
	if ok, err := mount(eng, logger); !ok {
		return err
	}

	select {
	case <-ctx.Done():
	case <-term.Quit():
	case <-eng.Done():
	}
	return nil
}

// runWindow opens the overlay window and runs the vsync loop on this goroutine.
func runWindow(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	sink, err := newTelemetrySink(cfg, opts, float64(cfg.Screen.TargetFPS), logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	win := host.OpenWindow(cfg.Screen, cfg.Render)
	defer win.Close()

	// Frames and the overlay share this goroutine, so lastPerf needs no lock
	var lastPerf telemetry.PerfStats
	eo := engineOptions(cfg, opts, logger, sink)
	eo.Host = win
	eo.Scheduler = win
	onWindow := eo.OnWindow
	eo.OnWindow = func(ws telemetry.WindowStats, ps telemetry.PerfStats) {
		onWindow(ws, ps)
		lastPerf = ps
	}

	eng := engine.New(eo)
	defer eng.Unmount()
	if ok, err := mount(eng, logger); !ok {
		return err
	}

	hud := ui.NewHUD(10, 10, 220)
	win.SetOverlay(func() {
		hud.HandleInput()
		hud.Draw(ui.HUDData{
			Live:   eng.Store().Count(),
			Hue:    eng.Store().Hue(),
			Frame:  eng.Frames(),
			FPS:    rl.GetFPS(),
			Perf:   lastPerf,
			Budget: cfg.Derived.FrameBudget,
		})
	})

	go func() {
		<-ctx.Done()
		win.Stop()
	}()
	win.Run(eng.Done())
	return nil
}
