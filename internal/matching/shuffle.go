package matching

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of items using the
// Fisher-Yates algorithm. The input slice is not modified.
func Shuffle[T any](items []T, r *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
