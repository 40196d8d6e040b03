// Package randutil centralises how seeded RNGs are constructed so every
// call site gets reproducible sequences from a single int64 seed.
package randutil

import rand "math/rand/v2"

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The two 64-bit PCG words are derived with splitmix64 so adjacent seeds
// don't produce correlated streams.
func New(seed int64) *rand.Rand {
	s := splitmix64(uint64(seed))
	return rand.New(rand.NewPCG(s.next(), s.next()))
}

// Shuffle permutes s in place using r.
func Shuffle[T any](r *rand.Rand, s []T) {
	r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

type splitmix64 uint64

func (s *splitmix64) next() uint64 {
	*s += 0x9e3779b97f4a7c15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
