package quiz

import "hanzidrill/internal/models"

// Permutation is one (word, answer category, question category) unit of quizzing.
// Index refers to the word's position in the session's test set.
type Permutation struct {
	Index int `json:"index"`
	Pair
}

var (
	basePairs = []Pair{
		{Answer: Pronunciation, Question: Character},
		{Answer: Pronunciation, Question: Meaning},
		{Answer: Meaning, Question: Pronunciation},
		{Answer: Meaning, Question: Character},
	}
	// handwritingPair asks the learner to draw the character given its meaning
	handwritingPair = Pair{Answer: Character, Question: Meaning}

	allPairs = append(append([]Pair{}, basePairs...), handwritingPair)
)

// Pairs returns the answer/question pairs enabled for a session
func Pairs(handwriting bool) []Pair {
	pairs := append([]Pair{}, basePairs...)
	if handwriting {
		pairs = append(pairs, handwritingPair)
	}
	return pairs
}

// BuildPool enumerates every enabled pair for every word of the test set.
// The order is deterministic; presentation order comes from Next.
func BuildPool(testSet []models.Word, handwriting bool) []Permutation {
	pairs := Pairs(handwriting)
	pool := make([]Permutation, 0, len(testSet)*len(pairs))
	for i := range testSet {
		for _, p := range pairs {
			pool = append(pool, Permutation{Index: i, Pair: p})
		}
	}
	return pool
}

// FilterByPriority applies the hard priority filter. Without onlyPriority, or
// when no permutation matches, the pool is returned unchanged.
func FilterByPriority(pool []Permutation, priority Priority, onlyPriority bool) []Permutation {
	if !priority.IsSet() || !onlyPriority {
		return pool
	}
	filtered := preferred(pool, priority)
	if len(filtered) == 0 {
		return pool
	}
	return filtered
}

func preferred(pool []Permutation, priority Priority) []Permutation {
	var out []Permutation
	for _, perm := range pool {
		if priority.Matches(perm) {
			out = append(out, perm)
		}
	}
	return out
}

// removePermutation returns a copy of pool without the first occurrence of perm
func removePermutation(pool []Permutation, perm Permutation) []Permutation {
	out := make([]Permutation, 0, len(pool))
	removed := false
	for _, p := range pool {
		if !removed && p == perm {
			removed = true
			continue
		}
		out = append(out, p)
	}
	return out
}
