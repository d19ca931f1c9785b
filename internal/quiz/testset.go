package quiz

import (
	"math/rand"

	"hanzidrill/internal/models"
)

// DueWords returns the words eligible for review on today, preserving order
func DueWords(all []models.Word, today models.Date) []models.Word {
	var due []models.Word
	for _, w := range all {
		if w.IsDue(today) {
			due = append(due, w)
		}
	}
	return due
}

// ChooseTestSet draws up to numWords due words uniformly without replacement.
// ErrNoWordsDue is returned when nothing is due.
func ChooseTestSet(all []models.Word, numWords int, today models.Date, rng *rand.Rand) ([]models.Word, error) {
	due := DueWords(all, today)
	if len(due) == 0 {
		return nil, ErrNoWordsDue
	}
	if numWords < 1 {
		numWords = 1
	}
	if numWords > len(due) {
		numWords = len(due)
	}

	testSet := make([]models.Word, 0, numWords)
	for len(testSet) < numWords {
		i := rng.Intn(len(due))
		testSet = append(testSet, due[i])
		due[i] = due[len(due)-1]
		due = due[:len(due)-1]
	}
	return testSet, nil
}
