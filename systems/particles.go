package systems

import (
	"math"

	"github.com/pthm-cable/trail/config"
)

// Shape identifies which procedural outline a particle is drawn with.
type Shape uint8

const (
	ShapeDisc Shape = iota
	ShapeStar
	ShapeDiamond
	ShapeRing

	numShapes
)

// String returns the lowercase shape name.
func (s Shape) String() string {
	switch s {
	case ShapeDisc:
		return "disc"
	case ShapeStar:
		return "star"
	case ShapeDiamond:
		return "diamond"
	case ShapeRing:
		return "ring"
	}
	return "unknown"
}

// Particle is a single trail particle.
// Size, MaxLife, Hue and Shape are fixed at spawn.
type Particle struct {
	X, Y       float64
	VelX, VelY float64
	Size       float64
	Life       float64 // (0, 1], fraction of lifetime remaining
	MaxLife    int     // Ticks
	Hue        int     // Degrees [0, 360)
	Shape      Shape

	age int // Ticks survived; Life = 1 - age/MaxLife
}

// ParticleSystem owns the live trail particles and the rotating hue.
type ParticleSystem struct {
	particles []Particle
	cfg       config.ParticleConfig
	rng       Rand
	hue       float64
}

// NewParticleSystem creates an empty particle system.
func NewParticleSystem(cfg config.ParticleConfig, rng Rand) *ParticleSystem {
	return &ParticleSystem{
		particles: make([]Particle, 0, 256),
		cfg:       cfg,
		rng:       rng,
	}
}

// SetConfig changes the ranges used by later spawns and ticks. Live particles keep
// their attributes.
func (s *ParticleSystem) SetConfig(cfg config.ParticleConfig) {
	s.cfg = cfg
}

// Spawn appends one particle at (x, y) moving along the pointer velocity hint.
func (s *ParticleSystem) Spawn(x, y, hintX, hintY float64) {
	c := &s.cfg

	size := c.SizeMin + s.rng.Float64()*(c.SizeMax-c.SizeMin)
	velX := hintX*c.HintScale + (s.rng.Float64()*2-1)*c.Jitter
	velY := hintY*c.HintScale + (s.rng.Float64()*2-1)*c.Jitter
	maxLife := c.LifeMin + s.rng.IntN(c.LifeMax-c.LifeMin)
	shape := Shape(s.rng.IntN(int(numShapes)))

	s.particles = append(s.particles, Particle{
		X:       x,
		Y:       y,
		VelX:    velX,
		VelY:    velY,
		Size:    size,
		Life:    1,
		MaxLife: maxLife,
		Hue:     int(s.hue),
		Shape:   shape,
	})
}

// Update advances every particle by one tick and drops the ones whose life ran out.
// Survivors keep their relative order. Returns the number of particles removed.
func (s *ParticleSystem) Update() int {
	drag := s.cfg.Drag
	gravity := s.cfg.Gravity

	alive := 0
	for i := range s.particles {
		p := &s.particles[i]

		p.X += p.VelX
		p.Y += p.VelY

		p.VelX *= drag
		p.VelY *= drag
		p.VelY += gravity

		p.age++
		p.Life = 1 - float64(p.age)/float64(p.MaxLife)
		if p.Life <= 0 {
			continue
		}

		s.particles[alive] = s.particles[i]
		alive++
	}
	expired := len(s.particles) - alive

	// Zero the tail so dropped particles don't linger in the backing array
	clear(s.particles[alive:])
	s.particles = s.particles[:alive]

	s.hue = math.Mod(s.hue+s.cfg.HueStep, 360)

	return expired
}

// Particles returns the live particles in spawn order.
// The slice is owned by the system and is only valid until the next Spawn or Update.
func (s *ParticleSystem) Particles() []Particle {
	return s.particles
}

// Count returns the current number of live particles.
func (s *ParticleSystem) Count() int {
	return len(s.particles)
}

// Hue returns the current hue counter in degrees.
func (s *ParticleSystem) Hue() float64 {
	return s.hue
}

// Reset drops every particle and rewinds the hue.
func (s *ParticleSystem) Reset() {
	clear(s.particles)
	s.particles = s.particles[:0]
	s.hue = 0
}
