package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// NewPCG returns a PCG source seeded deterministically from the provided
// int64. The helper centralises how we derive the two 64-bit seeds required
// by rand/v2 so that all call sites get reproducible sequences.
func NewPCG(seed int64) *rand.PCG {
	u := uint64(seed)
	return rand.NewPCG(mix(u), mix(u+goldenRatio64))
}

// New returns a *rand.Rand over a NewPCG source.
func New(seed int64) *rand.Rand {
	return rand.New(NewPCG(seed))
}

// StreamPCG returns a PCG source for worker `index` derived from a
// run-level seed. Streams for distinct indices are statistically
// independent, so parallel workers can partition work without correlated
// sampling while the run as a whole stays reproducible from one seed.
func StreamPCG(seed int64, index int) *rand.PCG {
	u := mix(uint64(seed)) + uint64(index)*goldenRatio64
	return rand.NewPCG(mix(u), mix(u+goldenRatio64))
}

// Stream returns a *rand.Rand over a StreamPCG source.
func Stream(seed int64, index int) *rand.Rand {
	return rand.New(StreamPCG(seed, index))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
