// Package systems provides the simulation side of the trail: pointer emission,
// the spawn queue and the particle store.
package systems

import "math/rand/v2"

// Rand is the randomness a ParticleSystem draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG-backed generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
