package quiz

import "hanzidrill/internal/models"

// Answer is the canonical answer for a category: a single string for
// Character and Pronunciation, a list of accepted synonyms for Meaning.
type Answer struct {
	multi  bool
	values []string
}

// Single builds a one-value answer
func Single(s string) Answer {
	return Answer{values: []string{s}}
}

// MultiChoice builds an answer accepting any of choices
func MultiChoice(choices []string) Answer {
	return Answer{multi: true, values: append([]string(nil), choices...)}
}

// IsMultiChoice reports whether the answer is a synonym list
func (a Answer) IsMultiChoice() bool {
	return a.multi
}

// Value returns the single answer string, or the first synonym
func (a Answer) Value() string {
	if len(a.values) == 0 {
		return ""
	}
	return a.values[0]
}

// Choices returns every accepted value
func (a Answer) Choices() []string {
	return append([]string(nil), a.values...)
}

// AnswerFor returns the canonical answer for showing face c of w
func AnswerFor(w models.Word, c Category, cs models.CharSet) Answer {
	switch c {
	case Pronunciation:
		return Single(w.Pinyin)
	case Meaning:
		return MultiChoice(w.Meanings())
	default:
		return Single(w.Character(cs))
	}
}

// Face returns the text shown to the learner for category c of w
func Face(w models.Word, c Category, cs models.CharSet) string {
	switch c {
	case Pronunciation:
		return w.Pinyin
	case Meaning:
		return w.Meaning
	default:
		return w.Character(cs)
	}
}
