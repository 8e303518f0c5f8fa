package simulation

import (
	"math"
	"math/rand/v2"
)

// NewRand builds the single random stream of a run from the persisted seed
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x5eed))
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// intRange draws an integer in [lo, hi]
func intRange(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func normal(r *rand.Rand, mean, stddev float64) float64 {
	return mean + stddev*r.NormFloat64()
}

func choice[T any](r *rand.Rand, xs []T) T {
	return xs[r.IntN(len(xs))]
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
