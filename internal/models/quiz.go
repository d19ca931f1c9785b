package models

import (
	"fmt"
	"time"
)

// Limits for the number of words drawn into one review session
const (
	MinSessionWords = 1
	MaxSessionWords = 20
)

// PriorityNone disables priority weighting
const PriorityNone = "none"

// priorityCodes are the answer/question pairs a learner may prioritise
var priorityCodes = map[string]bool{
	PriorityNone: true,
	"MP":         true,
	"PM":         true,
	"MC":         true,
	"CM":         true,
}

// QuizConfig holds a learner's review preferences. It is loaded once by the
// settings repository and passed explicitly into a session.
type QuizConfig struct {
	CharSet                     CharSet `json:"char_set"`
	NumWords                    int     `json:"num_words"`
	UseHandwriting              bool    `json:"use_handwriting"`
	Priority                    string  `json:"priority"`
	OnlyPriority                bool    `json:"only_priority"`
	UseSound                    bool    `json:"use_sound"`
	UseChineseSpeechRecognition bool    `json:"use_chinese_speech_recognition"`
	UseEnglishSpeechRecognition bool    `json:"use_english_speech_recognition"`
	UseFlashcards               bool    `json:"use_flashcards"`
}

// DefaultQuizConfig returns the settings used for learners who never saved any
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		CharSet:  CharSetSimplified,
		NumWords: 10,
		Priority: PriorityNone,
		UseSound: true,
	}
}

// Validate checks the recognised option ranges
func (c QuizConfig) Validate() error {
	if !c.CharSet.IsValid() {
		return fmt.Errorf("char_set must be %q or %q", CharSetSimplified, CharSetTraditional)
	}
	if c.NumWords < MinSessionWords || c.NumWords > MaxSessionWords {
		return fmt.Errorf("num_words must be between %d and %d", MinSessionWords, MaxSessionWords)
	}
	if !priorityCodes[c.Priority] {
		return fmt.Errorf("unknown priority %q", c.Priority)
	}
	return nil
}

// ScoreEntry is one line of the session report shown to the learner
type ScoreEntry struct {
	Char       string `json:"char"`
	ScoreLabel string `json:"score_label"`
}

// SessionReport is produced for presentation once a session finishes
type SessionReport struct {
	SessionID             string       `json:"session_id"`
	Scores                []ScoreEntry `json:"scores"`
	ContinuationAvailable bool         `json:"continuation_available"`
}

// ScoreSubmission is the per-word score persisted through the word store
type ScoreSubmission struct {
	WordID int64 `json:"word_id"`
	Score  int   `json:"score"` // 0..4
}

// PersistencePayload is the write-back body for a finished session
type PersistencePayload struct {
	Scores []ScoreSubmission `json:"scores"`
}

// ReviewSessionRecord is a finished session in the learner's history
type ReviewSessionRecord struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	TotalWords int       `json:"total_words"`
	Perfect    int       `json:"perfect"` // words answered without any "I don't know"
}
