package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat holds gauges such as the last reaction time and score
// The value lives in a Uint64 as IEEE-754 bits, so an unset gauge reads 0
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set replaces the gauge value
func (f *AtomicFloat) Set(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Add retries until no concurrent writer intervened; returns the sum it stored
func (f *AtomicFloat) Add(delta float64) float64 {
	for {
		cur := f.bits.Load()
		sum := math.Float64frombits(cur) + delta
		if f.bits.CompareAndSwap(cur, math.Float64bits(sum)) {
			return sum
		}
	}
}
