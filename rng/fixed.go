package rng

// Fixed is a Sampler for tests. A configured Fixed returns its value clamped
// into [0, n); an unconfigured one returns the lower midpoint (n-1)/2, so a
// die with sides s always shows 1+(s-1)/2.
type Fixed struct {
	value      uint64
	configured bool
}

// NewFixed returns a sampler that always returns min(value, n-1).
func NewFixed(value uint64) *Fixed {
	return &Fixed{value: value, configured: true}
}

// Midpoint returns a sampler that always returns the midpoint of [0, n).
func Midpoint() *Fixed {
	return &Fixed{}
}

// Sample implements Sampler.
func (f *Fixed) Sample(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	if !f.configured {
		return (n - 1) / 2
	}
	return min(f.value, n-1)
}
