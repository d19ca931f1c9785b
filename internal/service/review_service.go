package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"hanzidrill/internal/models"
	"hanzidrill/internal/quiz"
)

var (
	ErrSessionActive = errors.New("a review session is already in progress")
	ErrNoSession     = errors.New("no review session in progress")
)

// storeTimeout bounds the persistence calls made from machine callbacks,
// which have no request context
const storeTimeout = 10 * time.Second

// WordStore is the word-bank collaborator of the review engine
type WordStore interface {
	GetWords(ctx context.Context, userID int64) ([]models.Word, error)
	UpdateBankAndDueDate(ctx context.Context, wordID int64, bank int, due models.Date) error
}

// ConfigSource supplies the learner's quiz configuration at session start
type ConfigSource interface {
	Get(ctx context.Context, userID int64) (models.QuizConfig, error)
}

// HistoryStore records finished sessions
type HistoryStore interface {
	RecordSession(ctx context.Context, rec models.ReviewSessionRecord, submissions []models.ScoreSubmission, updates []models.WordUpdate) error
	ListSessions(ctx context.Context, userID int64, limit int) ([]models.ReviewSessionRecord, error)
}

// SessionStore keeps a snapshot of each learner's in-progress session
type SessionStore interface {
	Save(ctx context.Context, s quiz.Session) error
	Load(ctx context.Context, userID int64) (*quiz.Session, error)
	Delete(ctx context.Context, userID int64) error
}

// ReportMailer sends the end-of-session report
type ReportMailer interface {
	SendSessionReport(ctx context.Context, toEmail, toName string, report models.SessionReport) error
}

// UserLookup resolves the learner a report is mailed to
type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// ReviewOptions wires the optional collaborators of a ReviewService
type ReviewOptions struct {
	Words    WordStore
	Configs  ConfigSource
	History  HistoryStore
	Sessions SessionStore
	Mailer   ReportMailer
	Users    UserLookup

	Speaker   quiz.Speaker
	Romanizer quiz.Romanizer

	CorrectDelay time.Duration
	IdkDelay     time.Duration

	Now       func() time.Time
	Seed      func() int64
	AfterFunc quiz.AfterFunc
}

// ReviewState is what a learner sees of their review
type ReviewState struct {
	Session  quiz.Session
	Notice   string
	Finished bool
	Report   *models.SessionReport
}

// ReviewService runs one quiz machine per learner and persists the outcome
// of each finished session
type ReviewService struct {
	opts ReviewOptions

	// mu guards the maps. Machine methods are never called while holding it
	// because machine callbacks take it.
	mu       sync.Mutex
	machines map[int64]*quiz.Machine
	reports  map[int64]models.SessionReport

	mailWG sync.WaitGroup
}

// NewReviewService creates a review service
func NewReviewService(opts ReviewOptions) *ReviewService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return &ReviewService{
		opts:     opts,
		machines: make(map[int64]*quiz.Machine),
		reports:  make(map[int64]models.SessionReport),
	}
}

// Start draws a test set from the learner's due words and begins a session
func (s *ReviewService) Start(ctx context.Context, userID int64) (ReviewState, error) {
	if m, err := s.machine(ctx, userID); err == nil && !m.Done() {
		return ReviewState{}, ErrSessionActive
	} else if err != nil && !errors.Is(err, ErrNoSession) {
		return ReviewState{}, err
	}

	cfg, err := s.opts.Configs.Get(ctx, userID)
	if err != nil {
		return ReviewState{}, fmt.Errorf("failed to load settings: %w", err)
	}
	words, err := s.opts.Words.GetWords(ctx, userID)
	if err != nil {
		return ReviewState{}, fmt.Errorf("failed to load words: %w", err)
	}

	rng := rand.New(rand.NewSource(s.opts.Seed()))
	now := s.opts.Now()
	testSet, err := quiz.ChooseTestSet(words, cfg.NumWords, models.DateOf(now), rng)
	if err != nil {
		return ReviewState{}, err
	}
	session, err := quiz.Start(uuid.NewString(), userID, testSet, cfg, rng, now)
	if err != nil {
		return ReviewState{}, err
	}

	if err := s.opts.Sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving session snapshot for user %d: %v", userID, err)
	}

	m := s.newMachine(session, rng)
	s.mu.Lock()
	if old, ok := s.machines[userID]; ok && old != m {
		s.mu.Unlock()
		old.Close()
		s.mu.Lock()
	}
	s.machines[userID] = m
	delete(s.reports, userID)
	s.mu.Unlock()

	log.Printf("Started review session %s for user %d with %d words", session.ID, userID, len(testSet))
	return s.state(userID, m), nil
}

// Current returns the learner's in-progress session, or the report of the
// one that just finished
func (s *ReviewService) Current(ctx context.Context, userID int64) (ReviewState, error) {
	m, err := s.machine(ctx, userID)
	if errors.Is(err, ErrNoSession) {
		s.mu.Lock()
		report, ok := s.reports[userID]
		s.mu.Unlock()
		if ok {
			return ReviewState{Finished: true, Report: &report}, nil
		}
	}
	if err != nil {
		return ReviewState{}, err
	}
	return s.state(userID, m), nil
}

// Submit grades a typed answer
func (s *ReviewService) Submit(ctx context.Context, userID int64, input string) (quiz.Outcome, ReviewState, error) {
	return s.grade(ctx, userID, func(m *quiz.Machine) (quiz.Outcome, error) {
		return m.Submit(input)
	})
}

// SubmitTranscript grades a speech recognition transcript
func (s *ReviewService) SubmitTranscript(ctx context.Context, userID int64, transcript string) (quiz.Outcome, ReviewState, error) {
	return s.grade(ctx, userID, func(m *quiz.Machine) (quiz.Outcome, error) {
		return m.SubmitTranscript(transcript)
	})
}

// MarkIdk records "I don't know" for the active question
func (s *ReviewService) MarkIdk(ctx context.Context, userID int64) (ReviewState, error) {
	return s.act(ctx, userID, (*quiz.Machine).MarkIdk)
}

// Flashcard self-grades the active question in flashcard mode
func (s *ReviewService) Flashcard(ctx context.Context, userID int64, known bool) (ReviewState, error) {
	return s.act(ctx, userID, func(m *quiz.Machine) error {
		return m.Flashcard(known)
	})
}

// Stroke relays a handwriting event: complete when every stroke was drawn,
// otherwise one wrong stroke
func (s *ReviewService) Stroke(ctx context.Context, userID int64, complete bool) (ReviewState, error) {
	return s.act(ctx, userID, func(m *quiz.Machine) error {
		if complete {
			return m.CompleteStrokes()
		}
		return m.StrokeMistake()
	})
}

// Abandon discards the learner's in-progress session without scoring it
func (s *ReviewService) Abandon(ctx context.Context, userID int64) error {
	s.mu.Lock()
	m, ok := s.machines[userID]
	delete(s.machines, userID)
	s.mu.Unlock()

	if ok {
		m.Close()
	}
	if err := s.opts.Sessions.Delete(ctx, userID); err != nil {
		return err
	}
	log.Printf("User %d abandoned their review session", userID)
	return nil
}

// History returns the learner's most recent finished sessions
func (s *ReviewService) History(ctx context.Context, userID int64, limit int) ([]models.ReviewSessionRecord, error) {
	return s.opts.History.ListSessions(ctx, userID, limit)
}

// Close stops every running machine and waits for pending report emails
func (s *ReviewService) Close() {
	s.mu.Lock()
	machines := make([]*quiz.Machine, 0, len(s.machines))
	for _, m := range s.machines {
		machines = append(machines, m)
	}
	s.machines = make(map[int64]*quiz.Machine)
	s.mu.Unlock()

	for _, m := range machines {
		m.Close()
	}
	s.mailWG.Wait()
}

func (s *ReviewService) grade(ctx context.Context, userID int64, fn func(*quiz.Machine) (quiz.Outcome, error)) (quiz.Outcome, ReviewState, error) {
	m, err := s.machine(ctx, userID)
	if err != nil {
		return quiz.Wrong, ReviewState{}, err
	}
	out, err := fn(m)
	if err != nil && !errors.Is(err, quiz.ErrNoSpeechDetected) {
		return out, ReviewState{}, err
	}
	return out, s.state(userID, m), err
}

func (s *ReviewService) act(ctx context.Context, userID int64, fn func(*quiz.Machine) error) (ReviewState, error) {
	m, err := s.machine(ctx, userID)
	if err != nil {
		return ReviewState{}, err
	}
	if err := fn(m); err != nil {
		return ReviewState{}, err
	}
	return s.state(userID, m), nil
}

// machine returns the learner's running machine, resuming it from the
// snapshot store after a restart
func (s *ReviewService) machine(ctx context.Context, userID int64) (*quiz.Machine, error) {
	s.mu.Lock()
	m, ok := s.machines[userID]
	s.mu.Unlock()
	if ok {
		return m, nil
	}

	snap, err := s.opts.Sessions.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	if snap == nil {
		return nil, ErrNoSession
	}

	m = s.newMachine(*snap, rand.New(rand.NewSource(s.opts.Seed())))
	if m.Done() {
		// A finished snapshot is scored as soon as it is resumed
		return nil, ErrNoSession
	}

	s.mu.Lock()
	if existing, ok := s.machines[userID]; ok {
		s.mu.Unlock()
		m.Close()
		return existing, nil
	}
	s.machines[userID] = m
	s.mu.Unlock()

	log.Printf("Resumed review session %s for user %d", snap.ID, userID)
	return m, nil
}

func (s *ReviewService) newMachine(session quiz.Session, rng *rand.Rand) *quiz.Machine {
	return quiz.NewMachine(session, quiz.Options{
		CorrectDelay: s.opts.CorrectDelay,
		IdkDelay:     s.opts.IdkDelay,
		Speaker:      s.opts.Speaker,
		Romanizer:    s.opts.Romanizer,
		Rand:         rng,
		Now:          s.opts.Now,
		AfterFunc:    s.opts.AfterFunc,
		OnChange:     s.snapshot,
		OnFinish:     s.finalize,
	})
}

func (s *ReviewService) state(userID int64, m *quiz.Machine) ReviewState {
	st := ReviewState{
		Session:  m.Session(),
		Notice:   m.Notice(),
		Finished: m.Done(),
	}
	if st.Finished {
		s.mu.Lock()
		if report, ok := s.reports[userID]; ok {
			st.Report = &report
		}
		s.mu.Unlock()
	}
	return st
}

// snapshot persists every transition so a session survives a restart
func (s *ReviewService) snapshot(session quiz.Session) {
	if session.State == quiz.Finished {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.opts.Sessions.Save(ctx, session); err != nil {
		log.Printf("Error saving session snapshot %s: %v", session.ID, err)
	}
}

// finalize writes back the scheduler result of a finished session. Store
// failures are logged; the learner still gets their report.
func (s *ReviewService) finalize(session quiz.Session, res quiz.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	// Snapshot first: a resumed session must never score its words twice
	if err := s.opts.Sessions.Delete(ctx, session.UserID); err != nil {
		log.Printf("Error deleting session snapshot %s: %v", session.ID, err)
	}

	for _, u := range res.Updates {
		if err := s.opts.Words.UpdateBankAndDueDate(ctx, u.WordID, u.Bank, u.DueDate); err != nil {
			log.Printf("Error updating word %d after session %s: %v", u.WordID, session.ID, err)
		}
	}

	rec := models.ReviewSessionRecord{
		ID:         session.ID,
		UserID:     session.UserID,
		StartedAt:  session.StartedAt,
		FinishedAt: s.opts.Now(),
		TotalWords: len(session.TestSet),
		Perfect:    session.Perfect(),
	}
	if s.opts.History != nil {
		if err := s.opts.History.RecordSession(ctx, rec, res.Submissions, res.Updates); err != nil {
			log.Printf("Error recording session %s: %v", session.ID, err)
		}
	}

	report := models.SessionReport{
		SessionID:             session.ID,
		Scores:                res.Scores,
		ContinuationAvailable: s.continuationAvailable(ctx, session.UserID),
	}

	s.mu.Lock()
	s.reports[session.UserID] = report
	delete(s.machines, session.UserID)
	s.mu.Unlock()

	log.Printf("Finished review session %s for user %d: %d/%d words perfect",
		session.ID, session.UserID, rec.Perfect, rec.TotalWords)

	s.mailReport(session.UserID, report)
}

// continuationAvailable reports whether words are still due after the
// session's updates were applied
func (s *ReviewService) continuationAvailable(ctx context.Context, userID int64) bool {
	words, err := s.opts.Words.GetWords(ctx, userID)
	if err != nil {
		log.Printf("Error checking remaining due words for user %d: %v", userID, err)
		return false
	}
	return len(quiz.DueWords(words, models.DateOf(s.opts.Now()))) > 0
}

func (s *ReviewService) mailReport(userID int64, report models.SessionReport) {
	if s.opts.Mailer == nil || s.opts.Users == nil {
		return
	}
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		user, err := s.opts.Users.GetUserByID(ctx, userID)
		if err != nil || user == nil {
			log.Printf("Error looking up user %d for session report: %v", userID, err)
			return
		}
		if err := s.opts.Mailer.SendSessionReport(ctx, user.Email, user.Username, report); err != nil {
			log.Printf("Error sending session report to user %d: %v", userID, err)
		}
	}()
}
