package rng

import "lukechampine.com/uint128"

const (
	wyIncrement = 0xA0761D6478BD642F
	wyMix       = 0xE7037ED1A0B428DB
)

// Wyrand is a counter-based generator: every call adds a fixed odd constant to
// a 64-bit counter and mixes the result with a 128-bit multiply. The same seed
// always yields the same sequence of values, on every platform and across
// releases, so a roll can be reproduced from its seed.
//
// A Wyrand must not be shared by concurrent evaluations. Use one per
// goroutine, for example by calling Derive with a worker index.
type Wyrand struct {
	seed  uint64
	state uint64
}

// New returns a generator seeded with seed.
func New(seed uint64) *Wyrand {
	return &Wyrand{seed: seed, state: seed}
}

// Derive returns a generator for the index-th independent stream of seed.
// Streams for different indexes of the same seed do not overlap in any
// practical sense, and Derive(seed, i) is itself reproducible.
func Derive(seed, index uint64) *Wyrand {
	return New(mix(seed^wyMix, index+wyIncrement))
}

// Seed returns the seed the generator was created with.
func (w *Wyrand) Seed() uint64 {
	return w.seed
}

// Uint64 returns the next raw value.
func (w *Wyrand) Uint64() uint64 {
	w.state += wyIncrement
	return mix(w.state, w.state^wyMix)
}

// Sample returns a uniformly distributed value in [0, n).
func (w *Wyrand) Sample(n uint64) uint64 {
	return Bounded(w, n)
}

// mix folds the 128-bit product of a and b into 64 bits.
func mix(a, b uint64) uint64 {
	product := uint128.From64(a).Mul64(b)
	return product.Lo ^ product.Hi
}
