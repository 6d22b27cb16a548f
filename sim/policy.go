package sim

import "math/rand"

// Policy selects which of n admissible transitions to fire next, given a
// source of randomness. Index must be in [0,n).
type Policy func(n int, rng *rand.Rand) int

// UniformPolicy samples uniformly among the admissible transitions, the
// default §4.6 calls for ("sample one transition uniformly (or per a
// supplied policy)").
func UniformPolicy(n int, rng *rand.Rand) int {
	return rng.Intn(n)
}
