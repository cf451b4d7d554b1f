// Package rng provides the bounded random samplers used to roll dice.
//
// The VM never reads global random state. It draws from a [Sampler] passed in
// by the caller, so production rolls use a seeded [Wyrand] and tests can
// substitute a [Fixed] sampler with predictable output.
package rng

import "lukechampine.com/uint128"

// Sampler returns uniformly distributed integers in [0, n). Implementations
// may carry mutable state and are not required to be safe for concurrent use.
type Sampler interface {
	Sample(n uint64) uint64
}

// Source produces raw, uniformly distributed 64-bit values.
type Source interface {
	Uint64() uint64
}

// Bounded reduces a raw value from src into [0, n) without modulo bias, using
// Lemire's multiply-and-reject method. A raw value r is mapped to the high
// word of r*n; the low word tells whether r fell into the short final
// interval that would over-represent some outputs, in which case a new value
// is drawn. Most calls consume a single raw value. Bounded returns 0 when n
// is 0.
func Bounded(src Source, n uint64) uint64 {
	product := uint128.From64(src.Uint64()).Mul64(n)
	if product.Lo < n {
		// 2^64 mod n, computed without 128-bit arithmetic
		threshold := -n % n
		for product.Lo < threshold {
			product = uint128.From64(src.Uint64()).Mul64(n)
		}
	}
	return product.Hi
}
