package engine

import (
	"math/rand/v2"
	"time"
)

// Rand is the random source for spawn delay, side and target offset
type Rand interface {
	Float64() float64
}

// NewRand returns a PCG source; seed 0 seeds from the clock
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniform draws from [lo, hi)
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
