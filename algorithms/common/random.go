package common

import (
	"math/rand/v2"
)

// Rand is the seeded random source threaded through every stage that needs
// randomness. Equal seeds produce equal streams.
type Rand struct {
	r *rand.Rand
}

// NewRand creates a source from a seed.
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Fork derives an independent source. Forking consumes one value from r, so
// the sequence of forks is itself reproducible.
func (r *Rand) Fork() *Rand {
	return NewRand(r.r.Uint64())
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}

// Uniform returns a value in [lo, hi).
func (r *Rand) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.r.Float64()
}

// Bipolar returns a value in [-1, 1).
func (r *Rand) Bipolar() float64 {
	return 2*r.r.Float64() - 1
}

// Normal returns a standard normal deviate.
func (r *Rand) Normal() float64 {
	return r.r.NormFloat64()
}

// IntN returns a value in [0, n).
func (r *Rand) IntN(n int) int {
	return r.r.IntN(n)
}

// TPDF returns triangular-distributed noise in (-1, 1).
func (r *Rand) TPDF() float64 {
	return r.r.Float64() - r.r.Float64()
}

// Noise fills a new slice with standard normal samples.
func (r *Rand) Noise(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r.r.NormFloat64()
	}
	return out
}
