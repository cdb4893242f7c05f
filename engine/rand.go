package engine

import (
	"math/rand/v2"
	"time"
)

// Rand is the random source the simulation draws from.
// Float64 returns a value in [0, 1).
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded PCG source. A zero seed is replaced by the clock.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// jitter draws uniformly from [-amp, amp).
func jitter(rng Rand, amp float64) float64 {
	return rng.Float64()*amp*2 - amp
}
