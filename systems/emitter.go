package systems

import (
	"math"
	"time"

	"github.com/pthm-cable/trail/config"
)

// PointerSample is one pointer-move observation in viewport pixels.
type PointerSample struct {
	X, Y float64
	Time time.Time
}

// Emitter turns pointer samples into spawn requests.
// Faster motion spawns more particles per batch; at most one batch per spawn interval.
type Emitter struct {
	interval         time.Duration
	minSpeed         float64
	speedPerParticle float64
	maxPerBatch      int

	prevX, prevY float64
	hasPrev      bool
	lastSpawn    time.Time

	batch []SpawnRequest
}

// NewEmitter creates an emitter from config.
func NewEmitter(cfg config.EmitterConfig) *Emitter {
	return &Emitter{
		interval:         time.Duration(cfg.SpawnIntervalMS * float64(time.Millisecond)),
		minSpeed:         cfg.MinSpeed,
		speedPerParticle: cfg.SpeedPerParticle,
		maxPerBatch:      cfg.MaxPerBatch,
		batch:            make([]SpawnRequest, 0, cfg.MaxPerBatch),
	}
}

// SetConfig swaps the gating parameters, keeping pointer history.
func (e *Emitter) SetConfig(cfg config.EmitterConfig) {
	e.interval = time.Duration(cfg.SpawnIntervalMS * float64(time.Millisecond))
	e.minSpeed = cfg.MinSpeed
	e.speedPerParticle = cfg.SpeedPerParticle
	e.maxPerBatch = cfg.MaxPerBatch
}

// Sample processes one pointer sample and pushes any resulting batch onto q.
// Returns the number of requests pushed.
func (e *Emitter) Sample(s PointerSample, q *SpawnQueue) int {
	if !finite(s.X) || !finite(s.Y) {
		return 0
	}

	// The first sample has nothing to measure velocity against
	if !e.hasPrev {
		e.prevX, e.prevY = s.X, s.Y
		e.hasPrev = true
		return 0
	}

	velX := s.X - e.prevX
	velY := s.Y - e.prevY
	e.prevX, e.prevY = s.X, s.Y

	speed := math.Hypot(velX, velY)
	if speed <= e.minSpeed {
		return 0
	}
	if !e.lastSpawn.IsZero() && s.Time.Sub(e.lastSpawn) <= e.interval {
		return 0
	}

	n := e.BatchSize(speed)
	e.batch = e.batch[:0]
	for i := 0; i < n; i++ {
		e.batch = append(e.batch, SpawnRequest{X: s.X, Y: s.Y, HintX: velX, HintY: velY})
	}
	q.Push(e.batch...)
	e.lastSpawn = s.Time

	return n
}

// Track records s as the previous position without spawning, so motion while
// spawning is suspended does not build up into one large jump.
func (e *Emitter) Track(s PointerSample) {
	if !finite(s.X) || !finite(s.Y) {
		return
	}
	e.prevX, e.prevY = s.X, s.Y
	e.hasPrev = true
}

// BatchSize returns how many particles a gate opening at the given speed spawns.
func (e *Emitter) BatchSize(speed float64) int {
	n := int(math.Floor(speed/e.speedPerParticle)) + 1
	return max(1, min(n, e.maxPerBatch))
}

// Reset forgets the previous pointer position and last spawn time.
func (e *Emitter) Reset() {
	e.hasPrev = false
	e.prevX, e.prevY = 0, 0
	e.lastSpawn = time.Time{}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
