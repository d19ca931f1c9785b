package quiz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"hanzidrill/internal/models"
)

// State is the position of a session in the question loop
type State int

const (
	// Asking: a permutation is active and awaits an answer
	Asking State = iota + 1
	// Answered correctly; waiting out the pacing delay before the next draw
	Answered
	// Skipped with "I don't know"; waiting out the longer pacing delay
	Skipped
	// Finished: the pool is empty
	Finished
)

func (s State) String() string {
	switch s {
	case Asking:
		return "asking"
	case Answered:
		return "correct"
	case Skipped:
		return "idk"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "asking":
		*s = Asking
	case "correct":
		*s = Answered
	case "idk":
		*s = Skipped
	case "finished":
		*s = Finished
	default:
		return fmt.Errorf("quiz: unknown state %q", text)
	}
	return nil
}

// Session is the state of one review pass. It is a value: every transition
// returns a new Session and never mutates the receiver's pool or idk counts.
type Session struct {
	ID        string            `json:"id"`
	UserID    int64             `json:"user_id"`
	Config    models.QuizConfig `json:"config"`
	TestSet   []models.Word     `json:"test_set"`
	Pool      []Permutation     `json:"pool"`
	IdkCounts map[int]int       `json:"idk_counts"` // keyed by test-set index
	Active    Permutation       `json:"active"`
	State     State             `json:"state"`

	Priority     Priority `json:"priority"`
	OnlyPriority bool     `json:"only_priority"`

	InitialPoolSize int       `json:"initial_pool_size"`
	CorrectCount    int       `json:"correct_count"`
	StartedAt       time.Time `json:"started_at"`
}

// Start builds the pool for testSet, applies the hard priority filter and
// draws the first question.
func Start(id string, userID int64, testSet []models.Word, cfg models.QuizConfig, rng *rand.Rand, now time.Time) (Session, error) {
	if len(testSet) == 0 {
		return Session{}, ErrNoWordsDue
	}
	priority, err := ParsePriority(cfg.Priority)
	if err != nil {
		return Session{}, err
	}

	pool := FilterByPriority(BuildPool(testSet, cfg.UseHandwriting), priority, cfg.OnlyPriority)
	active, err := Next(pool, priority, rng)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:              id,
		UserID:          userID,
		Config:          cfg,
		TestSet:         append([]models.Word(nil), testSet...),
		Pool:            pool,
		IdkCounts:       map[int]int{},
		Active:          active,
		State:           Asking,
		Priority:        priority,
		OnlyPriority:    cfg.OnlyPriority,
		InitialPoolSize: len(pool),
		StartedAt:       now,
	}, nil
}

// Word returns the word behind the active permutation
func (s Session) Word() models.Word {
	return s.TestSet[s.Active.Index]
}

// Question returns the face shown for the active permutation
func (s Session) Question() string {
	return Face(s.Word(), s.Active.Question, s.Config.CharSet)
}

// Expected returns the canonical answer for the active permutation
func (s Session) Expected() Answer {
	return AnswerFor(s.Word(), s.Active.Answer, s.Config.CharSet)
}

// Remaining returns how many permutations still need a correct answer
func (s Session) Remaining() int {
	return len(s.Pool)
}

func (s Session) checkAsking() error {
	switch s.State {
	case Finished:
		return ErrFinished
	case Asking:
		return nil
	default:
		return ErrNotAsking
	}
}

// Submit grades typed input. Only a correct answer changes the session.
func (s Session) Submit(input string) (Session, Outcome, error) {
	if err := s.checkAsking(); err != nil {
		return s, Wrong, err
	}
	out := TextFeedback(input, s.Active.Answer, s.Expected())
	if out != Correct {
		return s, out, nil
	}
	return s.accept(), out, nil
}

// SubmitTranscript grades a speech transcript. Meaning answers need English
// recognition enabled, the other categories need Chinese recognition.
func (s Session) SubmitTranscript(transcript string, r Romanizer) (Session, Outcome, error) {
	if err := s.checkAsking(); err != nil {
		return s, Wrong, err
	}
	if !s.speechEnabled() {
		return s, Wrong, ErrModalityDisabled
	}
	if strings.TrimSpace(transcript) == "" {
		return s, Wrong, ErrNoSpeechDetected
	}
	written := s.Word().Character(s.Config.CharSet)
	out := CheckSpokenAnswer(transcript, written, s.Active.Answer, s.Expected(), r)
	if out != Correct {
		return s, out, nil
	}
	return s.accept(), out, nil
}

func (s Session) speechEnabled() bool {
	if s.Active.Answer == Meaning {
		return s.Config.UseEnglishSpeechRecognition
	}
	return s.Config.UseChineseSpeechRecognition
}

// SpeechLang returns the recognition language for the active answer
func (s Session) SpeechLang() string {
	if s.Active.Answer == Meaning {
		return "en-US"
	}
	return "zh-CN"
}

// Accept records a correct answer without grading input. It is used for
// completed stroke quizzes and self-graded flashcards.
func (s Session) Accept() (Session, error) {
	if err := s.checkAsking(); err != nil {
		return s, err
	}
	return s.accept(), nil
}

func (s Session) accept() Session {
	s.Pool = removePermutation(s.Pool, s.Active)
	s.CorrectCount++
	if len(s.Pool) == 0 {
		s.State = Finished
	} else {
		s.State = Answered
	}
	return s
}

// MarkIdk fails the active permutation. The pool is left untouched so the
// permutation will be asked again.
func (s Session) MarkIdk() (Session, error) {
	if err := s.checkAsking(); err != nil {
		return s, err
	}
	counts := make(map[int]int, len(s.IdkCounts)+1)
	for k, v := range s.IdkCounts {
		counts[k] = v
	}
	counts[s.Active.Index]++
	s.IdkCounts = counts
	s.State = Skipped
	return s, nil
}

// Advance draws the next question once a pacing delay has elapsed. The draw
// may repeat the permutation that was just skipped.
func (s Session) Advance(rng *rand.Rand) (Session, error) {
	switch s.State {
	case Asking:
		return s, nil
	case Finished:
		return s, ErrFinished
	}
	next, err := Next(s.Pool, s.Priority, rng)
	if err != nil {
		return s, err
	}
	s.Active = next
	s.State = Asking
	return s, nil
}

// Finish runs the scheduler over a finished session
func (s Session) Finish(today models.Date) (Result, error) {
	if s.State != Finished {
		return Result{}, ErrNotFinished
	}
	return Finish(s.TestSet, s.IdkCounts, s.Config.CharSet, today), nil
}

// Perfect counts the words that never received an "I don't know"
func (s Session) Perfect() int {
	n := 0
	for i := range s.TestSet {
		if s.IdkCounts[i] == 0 {
			n++
		}
	}
	return n
}
