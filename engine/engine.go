// Package engine wires pointer input, the particle store and the renderer into a
// mountable frame loop.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/trail/config"
	"github.com/pthm-cable/trail/renderer"
	"github.com/pthm-cable/trail/systems"
	"github.com/pthm-cable/trail/telemetry"
)

var (
	// ErrNoHover is returned by Mount when the host only has touch input.
	ErrNoHover = errors.New("engine: host has no hover-capable pointer")

	// ErrTerminated is returned by Mount after Unmount.
	ErrTerminated = errors.New("engine: already unmounted")
)

// State is the engine lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateScheduled
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Options configures a ParticleEngine.
type Options struct {
	Config    *config.Config // nil uses config.Default()
	Host      Host
	Scheduler FrameScheduler
	Rand      systems.Rand // nil seeds from the clock
	Logger    *slog.Logger // nil uses slog.Default()

	// Optional telemetry. OnWindow runs on the frame goroutine after each stats window.
	Perf     *telemetry.PerfCollector
	Stats    *telemetry.Collector
	OnWindow func(telemetry.WindowStats, telemetry.PerfStats)

	// OnFrame runs on the frame goroutine after each rendered frame.
	OnFrame func(frame int64, surface renderer.Surface)

	// MaxFrames closes Done after this many rendered frames (0 = never).
	MaxFrames int64
}

// ParticleEngine owns one trail: its pointer state, spawn queue, particle store
// and hue counter. Instances share nothing.
type ParticleEngine struct {
	host     Host
	sched    FrameScheduler
	logger   *slog.Logger
	emitter  *systems.Emitter
	queue    *systems.SpawnQueue
	store    *systems.ParticleSystem
	renderer *renderer.ParticleRenderer

	perf     *telemetry.PerfCollector
	stats    *telemetry.Collector
	onWindow func(telemetry.WindowStats, telemetry.PerfStats)
	onFrame  func(int64, renderer.Surface)

	mu       sync.Mutex // serializes Mount/Unmount
	state    atomic.Int32
	teardown atomic.Bool
	removers []func()

	// Pending resize packed as resizePending | w<<32 | h, zero when none
	resize atomic.Uint64

	// Set by the frame goroutine while the surface is unavailable; pointer
	// samples then only update history
	paused atomic.Bool

	// Frame goroutine only
	frames   int64
	drainBuf []systems.SpawnRequest

	maxFrames int64
	done      chan struct{}
	doneOnce  sync.Once
}

const (
	resizePending = 1 << 63
	resizeMask    = 1<<31 - 1
)

// New creates an idle engine.
func New(opts Options) *ParticleEngine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = systems.NewRand(uint64(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ParticleEngine{
		host:      opts.Host,
		sched:     opts.Scheduler,
		logger:    logger,
		emitter:   systems.NewEmitter(cfg.Emitter),
		queue:     systems.NewSpawnQueue(),
		store:     systems.NewParticleSystem(cfg.Particle, rng),
		renderer:  renderer.NewParticleRenderer(cfg.Render),
		perf:      opts.Perf,
		stats:     opts.Stats,
		onWindow:  opts.OnWindow,
		onFrame:   opts.OnFrame,
		maxFrames: opts.MaxFrames,
		done:      make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (e *ParticleEngine) State() State {
	return State(e.state.Load())
}

// Done is closed after Unmount or once MaxFrames frames have rendered.
func (e *ParticleEngine) Done() <-chan struct{} {
	return e.done
}

// Store exposes the particle store. Only touch it from the frame goroutine or
// while no scheduler is running.
func (e *ParticleEngine) Store() *systems.ParticleSystem {
	return e.store
}

// SetTuning swaps the emitter and particle parameters without clearing the
// trail. Call it from the goroutine that delivers pointer events and frames.
func (e *ParticleEngine) SetTuning(emitter config.EmitterConfig, particle config.ParticleConfig) {
	e.emitter.SetConfig(emitter)
	e.store.SetConfig(particle)
}

// Frames returns the number of rendered frames. Frame goroutine only.
func (e *ParticleEngine) Frames() int64 {
	return e.frames
}

// Mount registers listeners on the host and starts the frame scheduler.
// Mounting a mounted engine is a no-op.
func (e *ParticleEngine) Mount() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.teardown.Load() {
		return ErrTerminated
	}
	if e.State() != StateIdle {
		return nil
	}
	if !e.host.HasHover() {
		e.logger.Info("trail disabled", "reason", "no hover-capable pointer")
		return ErrNoHover
	}

	e.emitter.Reset()
	e.removers = append(e.removers,
		e.host.OnPointerMove(e.handlePointer),
		e.host.OnResize(e.handleResize),
	)
	e.state.Store(int32(StateScheduled))
	e.sched.Start(e.runFrame)

	e.logger.Info("trail mounted")
	return nil
}

// Unmount stops the scheduler and removes all listeners. Listener and frame
// invocations already in flight become no-ops. Safe to call more than once and
// before Mount.
func (e *ParticleEngine) Unmount() {
	if !e.teardown.CompareAndSwap(false, true) {
		return
	}

	e.mu.Lock()
	prev := State(e.state.Swap(int32(StateTerminated)))
	removers := e.removers
	e.removers = nil
	e.mu.Unlock()

	if prev == StateScheduled {
		e.sched.Stop()
	}
	for _, remove := range removers {
		remove()
	}

	// The frame goroutine has stopped; release what it held
	e.queue.Drain(nil)
	e.store.Reset()

	e.logger.Info("trail unmounted", "from", prev.String())
	e.finish()
}

func (e *ParticleEngine) finish() {
	e.doneOnce.Do(func() { close(e.done) })
}

func (e *ParticleEngine) handlePointer(s systems.PointerSample) {
	if e.teardown.Load() {
		return
	}
	if e.paused.Load() {
		e.emitter.Track(s)
		return
	}
	e.emitter.Sample(s, e.queue)
}

func (e *ParticleEngine) handleResize(w, h int) {
	if e.teardown.Load() || w < 0 || h < 0 {
		return
	}
	e.resize.Store(resizePending | uint64(w&resizeMask)<<32 | uint64(h&resizeMask))
}

func (e *ParticleEngine) takeResize() (w, h int, ok bool) {
	v := e.resize.Swap(0)
	if v&resizePending == 0 {
		return 0, 0, false
	}
	return int(v >> 32 & resizeMask), int(v & resizeMask), true
}

// runFrame is the frame callback: drain, resize, tick, render.
func (e *ParticleEngine) runFrame(now time.Time) {
	if e.teardown.Load() {
		return
	}

	surface := e.host.Surface()
	if surface == nil {
		if !e.paused.Swap(true) {
			e.logger.Debug("surface unavailable, skipping frames")
		}
		if e.stats != nil {
			e.stats.RecordSkippedFrame()
		}
		return
	}
	if e.paused.Swap(false) {
		e.logger.Debug("surface available again")
	}

	perf := e.perf
	if perf != nil {
		perf.RecordFrame()
		perf.StartTick()
		perf.StartPhase(telemetry.PhaseDrain)
	}

	var batches int
	e.drainBuf, batches = e.queue.Drain(e.drainBuf)
	for _, r := range e.drainBuf {
		e.store.Spawn(r.X, r.Y, r.HintX, r.HintY)
	}
	if w, h, ok := e.takeResize(); ok {
		surface.Resize(w, h)
	}

	if perf != nil {
		perf.StartPhase(telemetry.PhaseTick)
	}
	expired := e.store.Update()

	if perf != nil {
		perf.StartPhase(telemetry.PhaseRender)
	}
	e.renderer.Draw(surface, e.store.Particles())
	if p, ok := surface.(renderer.Presenter); ok {
		p.Present()
	}

	e.frames++
	if e.stats != nil {
		if perf != nil {
			perf.StartPhase(telemetry.PhaseTelemetry)
		}
		e.stats.RecordSpawns(batches, len(e.drainBuf))
		e.stats.RecordExpired(expired)
		e.stats.ObserveLive(e.store.Count())
	}
	if perf != nil {
		perf.EndTick()
	}

	if e.onFrame != nil {
		e.onFrame(e.frames, surface)
	}
	if e.stats != nil && e.stats.ShouldFlush(e.frames) {
		ws := e.stats.Flush(e.frames, e.store.Particles(), e.store.Hue())
		var ps telemetry.PerfStats
		if perf != nil {
			ps = perf.Stats()
		}
		if e.onWindow != nil {
			e.onWindow(ws, ps)
		}
	}

	if e.maxFrames > 0 && e.frames >= e.maxFrames {
		e.finish()
	}
}
