package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"hanzidrill/internal/lexicon"
	"hanzidrill/internal/models"
	"hanzidrill/internal/quiz"
	"hanzidrill/internal/repository"
	"hanzidrill/internal/validation"
)

var (
	ErrWordExists     = errors.New("word already in bank")
	ErrWordNotFound   = errors.New("word not found")
	ErrMissingMeaning = errors.New("meaning is required for words not in the dictionary")
)

// WordBankStore is the word storage used by WordService
type WordBankStore interface {
	CreateWord(ctx context.Context, w *models.Word) error
	GetWords(ctx context.Context, userID int64) ([]models.Word, error)
	FindBySimp(ctx context.Context, userID int64, simp string) (*models.Word, error)
	CountWords(ctx context.Context, userID int64) (int, error)
	CountDue(ctx context.Context, userID int64, today models.Date) (int, error)
	DeleteWord(ctx context.Context, userID, wordID int64) error
}

// NewWordInput is a word as entered by the learner. Only Simp is required
// when the dictionary knows the word.
type NewWordInput struct {
	Simp    string `json:"simp"`
	Trad    string `json:"trad"`
	Pinyin  string `json:"pinyin"`
	Meaning string `json:"meaning"`
}

// WordService manages a learner's word bank
type WordService struct {
	words     WordBankStore
	lex       lexicon.Lexicon
	romanizer quiz.Romanizer
	now       func() time.Time
}

// NewWordService creates a word service; lex and romanizer may be nil
func NewWordService(words WordBankStore, lex lexicon.Lexicon, romanizer quiz.Romanizer) *WordService {
	return &WordService{words: words, lex: lex, romanizer: romanizer, now: time.Now}
}

// AddWord adds a word to the bank at bank 1. Missing fields are filled from
// the dictionary. The word is due today, or tomorrow once the bank already
// holds more than nine words.
func (s *WordService) AddWord(ctx context.Context, userID int64, in NewWordInput) (*models.Word, error) {
	in.Simp = strings.TrimSpace(in.Simp)
	in.Trad = strings.TrimSpace(in.Trad)
	in.Pinyin = strings.TrimSpace(in.Pinyin)
	in.Meaning = strings.TrimSpace(in.Meaning)

	if err := validation.ValidateHanzi("simp", in.Simp); err != nil {
		return nil, err
	}
	if in.Trad != "" {
		if err := validation.ValidateHanzi("trad", in.Trad); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateMeaning(in.Meaning); err != nil {
		return nil, err
	}

	existing, err := s.words.FindBySimp(ctx, userID, in.Simp)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrWordExists
	}

	s.fillFromLexicon(&in)
	if in.Meaning == "" {
		return nil, ErrMissingMeaning
	}

	count, err := s.words.CountWords(ctx, userID)
	if err != nil {
		return nil, err
	}

	word := &models.Word{
		UserID:  userID,
		Simp:    in.Simp,
		Trad:    in.Trad,
		Pinyin:  in.Pinyin,
		Meaning: in.Meaning,
		Bank:    quiz.MinBank,
		DueDate: quiz.InitialDueDate(models.DateOf(s.now()), count),
	}
	if err := s.words.CreateWord(ctx, word); err != nil {
		return nil, err
	}
	return word, nil
}

func (s *WordService) fillFromLexicon(in *NewWordInput) {
	if s.lex != nil {
		if e, ok := s.lex.Lookup(in.Simp); ok {
			if in.Trad == "" && e.Trad != e.Simp {
				in.Trad = e.Trad
			}
			if in.Pinyin == "" {
				in.Pinyin = e.Pinyin
			}
			if in.Meaning == "" {
				in.Meaning = e.Meaning()
			}
		}
	}
	if in.Pinyin == "" && s.romanizer != nil {
		in.Pinyin = strings.Join(s.romanizer.Romanize(in.Simp), " ")
	}
}

// ListWords returns every word in the learner's bank
func (s *WordService) ListWords(ctx context.Context, userID int64) ([]models.Word, error) {
	return s.words.GetWords(ctx, userID)
}

// DueCount returns how many words are due for review today
func (s *WordService) DueCount(ctx context.Context, userID int64) (int, error) {
	return s.words.CountDue(ctx, userID, models.DateOf(s.now()))
}

// DeleteWord removes a word from the learner's bank
func (s *WordService) DeleteWord(ctx context.Context, userID, wordID int64) error {
	err := s.words.DeleteWord(ctx, userID, wordID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWordNotFound
	}
	return err
}
