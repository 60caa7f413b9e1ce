package telemetry

import (
	"log/slog"
	"time"
)

// Phase is one stage of the frame callback.
type Phase int

const (
	PhaseDrain Phase = iota
	PhaseTick
	PhaseRender
	PhaseTelemetry

	numPhases
)

var phaseNames = [numPhases]string{"drain", "tick", "render", "telemetry"}

func (p Phase) String() string {
	if p < 0 || p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// frameSample is the work timing of one rendered frame.
type frameSample struct {
	work   time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector keeps a ring of the last windowSize frame timings and the
// wall-clock spacing between frames.
type PerfCollector struct {
	budget time.Duration
	ring   []frameSample
	next   int
	filled int

	cur        frameSample
	workStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	spacing   time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of frames to average over (e.g., 60 for 1 second at 60fps).
// budget: frames whose work takes longer count as overruns (0 disables).
func NewPerfCollector(windowSize int, budget time.Duration) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		budget: budget,
		ring:   make([]frameSample, windowSize),
	}
}

// StartTick begins timing a frame's work.
func (p *PerfCollector) StartTick() {
	p.cur = frameSample{}
	p.workStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = true
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase && p.phase >= 0 && p.phase < numPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the frame and pushes it into the ring.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.work = now.Sub(p.workStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame records wall-clock frame spacing. Call once per rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.spacing = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarizes the frames currently in the ring.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg [numPhases]time.Duration
	PhasePct [numPhases]float64 // Share of average frame work

	// Frames whose work exceeded the budget, and average work as a share of it
	Overruns  int
	BudgetPct float64

	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{FrameDuration: p.spacing}
	if p.spacing > 0 {
		st.FPS = float64(time.Second) / float64(p.spacing)
	}
	if p.filled == 0 {
		return st
	}

	var total time.Duration
	var phaseTotal [numPhases]time.Duration
	for i, s := range p.ring[:p.filled] {
		total += s.work
		if i == 0 || s.work < st.MinTickDuration {
			st.MinTickDuration = s.work
		}
		st.MaxTickDuration = max(st.MaxTickDuration, s.work)
		if p.budget > 0 && s.work > p.budget {
			st.Overruns++
		}
		for ph, d := range s.phases {
			phaseTotal[ph] += d
		}
	}

	n := time.Duration(p.filled)
	st.AvgTickDuration = total / n
	for ph := range phaseTotal {
		st.PhaseAvg[ph] = phaseTotal[ph] / n
		if st.AvgTickDuration > 0 {
			st.PhasePct[ph] = float64(st.PhaseAvg[ph]) / float64(st.AvgTickDuration) * 100
		}
	}
	if p.budget > 0 {
		st.BudgetPct = float64(st.AvgTickDuration) / float64(p.budget) * 100
	}
	return st
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("overruns", s.Overruns),
	}
	if s.BudgetPct > 0 {
		attrs = append(attrs, slog.Float64("budget_pct", s.BudgetPct))
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph, pct := range s.PhasePct {
		if pct > 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	Overruns     int     `csv:"overruns"`
	BudgetPct    float64 `csv:"budget_pct"`
	FPS          float64 `csv:"fps"`
	DrainPct     float64 `csv:"drain_pct"`
	TickPct      float64 `csv:"tick_pct"`
	RenderPct    float64 `csv:"render_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		Overruns:     s.Overruns,
		BudgetPct:    s.BudgetPct,
		FPS:          s.FPS,
		DrainPct:     s.PhasePct[PhaseDrain],
		TickPct:      s.PhasePct[PhaseTick],
		RenderPct:    s.PhasePct[PhaseRender],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
