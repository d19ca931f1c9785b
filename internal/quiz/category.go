package quiz

import (
	"encoding"
	"fmt"
)

// Category is one of the three faces of a word that can be asked or answered
type Category int

const (
	Character Category = iota + 1
	Pronunciation
	Meaning
)

var (
	_ fmt.Stringer             = Category(0)
	_ encoding.TextMarshaler   = Category(0)
	_ encoding.TextUnmarshaler = (*Category)(nil)
)

func (c Category) String() string {
	switch c {
	case Character:
		return "Character"
	case Pronunciation:
		return "Pronunciation"
	case Meaning:
		return "Meaning"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Letter returns the one-letter code used in pair codes such as "PM"
func (c Category) Letter() byte {
	switch c {
	case Character:
		return 'C'
	case Pronunciation:
		return 'P'
	case Meaning:
		return 'M'
	default:
		return '?'
	}
}

func categoryFromLetter(b byte) (Category, bool) {
	switch b {
	case 'C':
		return Character, true
	case 'P':
		return Pronunciation, true
	case 'M':
		return Meaning, true
	}
	return 0, false
}

func (c Category) MarshalText() ([]byte, error) {
	switch c {
	case Character, Pronunciation, Meaning:
		return []byte(c.String()), nil
	}
	return nil, fmt.Errorf("quiz: invalid category %d", int(c))
}

func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Character":
		*c = Character
	case "Pronunciation":
		*c = Pronunciation
	case "Meaning":
		*c = Meaning
	default:
		return fmt.Errorf("quiz: unknown category %q", text)
	}
	return nil
}

// Pair is an (answer, question) category combination. The learner is shown the
// Question face and must produce the Answer face.
type Pair struct {
	Answer   Category `json:"answer"`
	Question Category `json:"question"`
}

// Code returns the two-letter code, answer first: "PM" asks for the
// pronunciation of a word given its meaning.
func (p Pair) Code() string {
	return string([]byte{p.Answer.Letter(), p.Question.Letter()})
}

func (p Pair) String() string {
	return p.Code()
}

// ParsePair parses a two-letter pair code
func ParsePair(code string) (Pair, error) {
	if len(code) != 2 {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidPriority, code)
	}
	answer, ok1 := categoryFromLetter(code[0])
	question, ok2 := categoryFromLetter(code[1])
	if !ok1 || !ok2 || answer == question {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidPriority, code)
	}
	return Pair{Answer: answer, Question: question}, nil
}

// Priority is an optional preferred pair. The zero value means "none".
type Priority struct {
	pair Pair
	set  bool
}

// NoPriority disables priority weighting
var NoPriority = Priority{}

// PriorityOf returns a priority preferring p
func PriorityOf(p Pair) Priority {
	return Priority{pair: p, set: true}
}

// ParsePriority accepts "none" (or "") and the pair codes that a session can
// actually contain.
func ParsePriority(s string) (Priority, error) {
	if s == "" || s == "none" {
		return NoPriority, nil
	}
	p, err := ParsePair(s)
	if err != nil {
		return NoPriority, err
	}
	for _, allowed := range allPairs {
		if allowed == p {
			return PriorityOf(p), nil
		}
	}
	return NoPriority, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// IsSet reports whether a preferred pair is configured
func (p Priority) IsSet() bool {
	return p.set
}

// Pair returns the preferred pair; only meaningful when IsSet.
func (p Priority) Pair() Pair {
	return p.pair
}

// Matches reports whether perm has exactly the preferred pair
func (p Priority) Matches(perm Permutation) bool {
	return p.set && perm.Pair == p.pair
}

func (p Priority) String() string {
	if !p.set {
		return "none"
	}
	return p.pair.Code()
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
