package puzzle

import "math"

// LCG constants. These must match every other implementation that serves
// the same daily puzzle, so they are fixed rather than configurable.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// RNG is a seeded linear-congruential generator.
//
// It is not cryptographically secure and is not meant to be: its only job
// is to make puzzle generation reproducible from a date seed.
//
// Thread-safety: RNG is NOT safe for concurrent use. Each generator run
// creates its own instance.
type RNG struct {
	state uint64
}

// NewRNG creates a generator starting from seed.
func NewRNG(seed uint32) *RNG {
	return &RNG{state: uint64(seed)}
}

// Next advances the generator and returns a value in [0, 1).
func (r *RNG) Next() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.state) / lcgModulus
}

// NextInt returns an integer in [min, max], inclusive on both ends.
func (r *RNG) NextInt(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// Shuffle returns a Fisher-Yates permutation of in driven by r.
// The input slice is never modified.
func Shuffle[T any](r *RNG, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := r.NextInt(0, i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
