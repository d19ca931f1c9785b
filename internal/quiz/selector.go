package quiz

import "math/rand"

// Next draws the next permutation. When any permutation matches the priority
// the draw is uniform over those, otherwise uniform over the whole pool.
func Next(pool []Permutation, priority Priority, rng *rand.Rand) (Permutation, error) {
	if len(pool) == 0 {
		return Permutation{}, ErrEmptyPool
	}
	candidates := pool
	if priority.IsSet() {
		if pref := preferred(pool, priority); len(pref) > 0 {
			candidates = pref
		}
	}
	return candidates[rng.Intn(len(candidates))], nil
}
