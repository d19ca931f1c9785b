package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"hanzidrill/internal/models"
	"hanzidrill/internal/quiz"
	"hanzidrill/internal/repository"
)

var (
	today = models.NewDate(2024, time.March, 10)
	noon  = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
)

// memWords is an in-memory word store
type memWords struct {
	mu        sync.Mutex
	words     []models.Word
	nextID    int64
	failWrite bool
	onUpdate  func(wordID int64)
}

func newMemWords(words ...models.Word) *memWords {
	m := &memWords{}
	for _, w := range words {
		m.nextID++
		if w.ID == 0 {
			w.ID = m.nextID
		}
		m.words = append(m.words, w)
	}
	return m
}

func (m *memWords) CreateWord(ctx context.Context, w *models.Word) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	w.ID = m.nextID
	m.words = append(m.words, *w)
	return nil
}

func (m *memWords) GetWords(ctx context.Context, userID int64) ([]models.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Word
	for _, w := range m.words {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memWords) FindBySimp(ctx context.Context, userID int64, simp string) (*models.Word, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.words {
		if w.UserID == userID && w.Simp == simp {
			w := w
			return &w, nil
		}
	}
	return nil, nil
}

func (m *memWords) CountWords(ctx context.Context, userID int64) (int, error) {
	words, _ := m.GetWords(ctx, userID)
	return len(words), nil
}

func (m *memWords) CountDue(ctx context.Context, userID int64, day models.Date) (int, error) {
	words, _ := m.GetWords(ctx, userID)
	return len(quiz.DueWords(words, day)), nil
}

func (m *memWords) DeleteWord(ctx context.Context, userID, wordID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.words {
		if w.ID == wordID && w.UserID == userID {
			m.words = append(m.words[:i], m.words[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memWords) UpdateBankAndDueDate(ctx context.Context, wordID int64, bank int, due models.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onUpdate != nil {
		m.onUpdate(wordID)
	}
	if m.failWrite {
		return errors.New("disk full")
	}
	for i := range m.words {
		if m.words[i].ID == wordID {
			m.words[i].Bank = bank
			m.words[i].DueDate = due
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memWords) ImportWords(ctx context.Context, userID int64, words []models.Word) (int, error) {
	for _, w := range words {
		w := w
		if existing, _ := m.FindBySimp(ctx, userID, w.Simp); existing != nil {
			continue
		}
		if err := m.CreateWord(ctx, &w); err != nil {
			return 0, err
		}
	}
	return len(words), nil
}

func (m *memWords) get(id int64) models.Word {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.words {
		if w.ID == id {
			return w
		}
	}
	return models.Word{}
}

// memSettings is an in-memory settings store
type memSettings struct {
	mu   sync.Mutex
	cfgs map[int64]models.QuizConfig
}

func (m *memSettings) GetQuizConfig(ctx context.Context, userID int64) (*models.QuizConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.cfgs[userID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *memSettings) SaveQuizConfig(ctx context.Context, userID int64, cfg models.QuizConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfgs == nil {
		m.cfgs = make(map[int64]models.QuizConfig)
	}
	m.cfgs[userID] = cfg
	return nil
}

// staticConfig always returns the same configuration
type staticConfig models.QuizConfig

func (c staticConfig) Get(ctx context.Context, userID int64) (models.QuizConfig, error) {
	return models.QuizConfig(c), nil
}

// memHistory records finished sessions
type memHistory struct {
	mu      sync.Mutex
	records []models.ReviewSessionRecord
	subs    [][]models.ScoreSubmission
}

func (m *memHistory) RecordSession(ctx context.Context, rec models.ReviewSessionRecord, subs []models.ScoreSubmission, updates []models.WordUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	m.subs = append(m.subs, subs)
	return nil
}

func (m *memHistory) ListSessions(ctx context.Context, userID int64, limit int) ([]models.ReviewSessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReviewSessionRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.records[i].UserID == userID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

// memSessions is an in-memory snapshot store
type memSessions struct {
	mu    sync.Mutex
	snaps map[int64]quiz.Session
	saves int
}

func newMemSessions() *memSessions {
	return &memSessions{snaps: make(map[int64]quiz.Session)}
}

func (m *memSessions) Save(ctx context.Context, s quiz.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[s.UserID] = s
	m.saves++
	return nil
}

func (m *memSessions) Load(ctx context.Context, userID int64) (*quiz.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessions) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, userID)
	return nil
}

func (m *memSessions) has(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.snaps[userID]
	return ok
}

// sentReport is one call to recordingMailer
type sentReport struct {
	to     string
	name   string
	report models.SessionReport
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentReport
}

func (m *recordingMailer) SendSessionReport(ctx context.Context, toEmail, toName string, report models.SessionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentReport{toEmail, toName, report})
	return nil
}

type memUsers map[int64]*models.User

func (m memUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return m[id], nil
}

// manualTimers collects pacing timers so tests decide when they fire
type manualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (mt *manualTimers) AfterFunc(d time.Duration, f func()) func() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	t := &manualTimer{f: f}
	mt.pending = append(mt.pending, t)
	return func() bool {
		mt.mu.Lock()
		defer mt.mu.Unlock()
		wasPending := !t.stopped
		t.stopped = true
		return wasPending
	}
}

// fire runs every timer that is still pending
func (mt *manualTimers) fire() {
	mt.mu.Lock()
	timers := mt.pending
	mt.pending = nil
	var due []func()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			due = append(due, t.f)
		}
	}
	mt.mu.Unlock()
	for _, f := range due {
		f()
	}
}
