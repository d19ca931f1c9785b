package models

import (
	"strings"
	"time"
)

// CharSet selects which script variant is shown as the "character" form
type CharSet string

const (
	CharSetSimplified  CharSet = "simp"
	CharSetTraditional CharSet = "trad"
)

// IsValid reports whether cs is a known script variant
func (cs CharSet) IsValid() bool {
	return cs == CharSetSimplified || cs == CharSetTraditional
}

// Word is a vocabulary unit in a learner's bank
type Word struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Simp      string    `json:"simp"`
	Trad      string    `json:"trad"`
	Pinyin    string    `json:"pinyin"`  // space separated, tone numbered, 5 = neutral
	Meaning   string    `json:"meaning"` // "/" separated synonyms
	Bank      int       `json:"bank"`    // 1-5
	DueDate   Date      `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
}

// Character returns the written form of the word in the given script.
// Traditional falls back to simplified when the word has no separate traditional form.
func (w Word) Character(cs CharSet) string {
	if cs == CharSetTraditional && w.Trad != "" {
		return w.Trad
	}
	return w.Simp
}

// Meanings splits the meaning string into its synonyms
func (w Word) Meanings() []string {
	parts := strings.Split(w.Meaning, "/")
	meanings := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			meanings = append(meanings, p)
		}
	}
	return meanings
}

// IsDue reports whether the word is eligible for review on the given day
func (w Word) IsDue(today Date) bool {
	return !w.DueDate.After(today)
}

// WordUpdate is the bank/due-date mutation applied to one word at session end
type WordUpdate struct {
	WordID  int64 `json:"word_id"`
	Bank    int   `json:"bank"`
	DueDate Date  `json:"due_date"`
}
