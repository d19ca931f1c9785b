package quiz

import "hanzidrill/internal/models"

// Bank levels
const (
	MinBank = 1
	MaxBank = 5
)

// maxFailCount caps how many "I don't know" marks count against a word
const maxFailCount = 4

// bankIntervals is the review interval in days for each bank level
var bankIntervals = [MaxBank + 1]int{0, 1, 3, 7, 30, 60}

var scoreLabels = [maxFailCount + 1]string{
	"Very Strong",
	"Strong",
	"Average",
	"Weak",
	"Very Weak",
}

// BankInterval returns the number of days until a word at bank is next due
func BankInterval(bank int) int {
	return bankIntervals[clampBank(bank)]
}

func clampBank(bank int) int {
	if bank < MinBank {
		return MinBank
	}
	if bank > MaxBank {
		return MaxBank
	}
	return bank
}

// Score converts an idk count into the 0..4 score, 4 being flawless
func Score(idkCount int) int {
	fails := idkCount
	if fails > maxFailCount {
		fails = maxFailCount
	}
	if fails < 0 {
		fails = 0
	}
	return maxFailCount - fails
}

// ScoreLabel returns the report label for a 0..4 score
func ScoreLabel(score int) string {
	if score < 0 {
		score = 0
	}
	if score > maxFailCount {
		score = maxFailCount
	}
	return scoreLabels[maxFailCount-score]
}

// NextBank applies the bank rule: a flawless word moves up one level, any
// mistake resets it to the first level.
func NextBank(bank, score int) int {
	bank = clampBank(bank)
	if score < maxFailCount {
		return MinBank
	}
	if bank < MaxBank {
		return bank + 1
	}
	return bank
}

// DueDate returns the date a word at bank is next due
func DueDate(today models.Date, bank int) models.Date {
	return today.AddDays(BankInterval(bank))
}

// InitialDueDate returns the first due date of a newly added word. Once the
// bank holds more than nine words new ones wait until tomorrow.
func InitialDueDate(today models.Date, bankSize int) models.Date {
	if bankSize > 9 {
		return today.AddDays(1)
	}
	return today
}

// Result is the scheduler's output for one finished session
type Result struct {
	Scores      []models.ScoreEntry      `json:"scores"`
	Submissions []models.ScoreSubmission `json:"submissions"`
	Updates     []models.WordUpdate      `json:"updates"`
}

// Payload returns the persistence body for the word store
func (r Result) Payload() models.PersistencePayload {
	return models.PersistencePayload{Scores: r.Submissions}
}

// Finish scores every word of the test set from its idk count (keyed by
// test-set index) and computes the new bank and due date.
func Finish(testSet []models.Word, idkCounts map[int]int, cs models.CharSet, today models.Date) Result {
	res := Result{
		Scores:      make([]models.ScoreEntry, 0, len(testSet)),
		Submissions: make([]models.ScoreSubmission, 0, len(testSet)),
		Updates:     make([]models.WordUpdate, 0, len(testSet)),
	}
	for i, w := range testSet {
		score := Score(idkCounts[i])
		bank := NextBank(w.Bank, score)
		res.Scores = append(res.Scores, models.ScoreEntry{
			Char:       w.Character(cs),
			ScoreLabel: ScoreLabel(score),
		})
		res.Submissions = append(res.Submissions, models.ScoreSubmission{WordID: w.ID, Score: score})
		res.Updates = append(res.Updates, models.WordUpdate{
			WordID:  w.ID,
			Bank:    bank,
			DueDate: DueDate(today, bank),
		})
	}
	return res
}
