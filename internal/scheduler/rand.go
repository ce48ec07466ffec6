// Package scheduler decides the order in which quiz items are presented.
//
// Everything here is pure: time is passed in and randomness comes from a Rand
// supplied by the caller, so a seeded *rand.Rand gives reproducible queues.
package scheduler

// Rand is the random source used for shuffling and reinsertion offsets.
// *math/rand.Rand satisfies it.
type Rand interface {
	// Intn returns a uniform int in [0, n).
	Intn(n int) int
}

// Shuffle permutes s in place with Fisher-Yates.
func Shuffle[T any](s []T, rng Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
