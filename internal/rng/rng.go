// Package rng provides the single seeded random source search policies
// that need randomization (epsilon-greedy and type-based open lists)
// draw from, so a run is exactly reproducible given its seed.
package rng

import "math/rand/v2"

// RNG wraps a PCG-seeded generator behind the handful of operations the
// search package's randomized open lists need.
type RNG struct {
	r *rand.Rand
}

// New returns an RNG seeded deterministically from seed: the same seed
// always produces the same sequence, regardless of platform.
func New(seed int64) *RNG {
	s := uint64(seed)
	return &RNG{r: rand.New(rand.NewPCG(s, s))}
}

// IntN returns a pseudo-random int in [0, n). Panics if n <= 0.
func (g *RNG) IntN(n int) int { return g.r.IntN(n) }

// Float64 returns a pseudo-random float64 in [0.0, 1.0).
func (g *RNG) Float64() float64 { return g.r.Float64() }
