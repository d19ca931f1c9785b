package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"hanzidrill/internal/database"
	"hanzidrill/internal/lexicon"
	"hanzidrill/internal/models"
	"hanzidrill/internal/repository"
	"hanzidrill/internal/security"
	"hanzidrill/internal/service"
)

// pacingTimers holds the review pacing timers until the test fires them
type pacingTimers struct {
	mu      sync.Mutex
	pending []*pacingTimer
}

type pacingTimer struct {
	f       func()
	stopped bool
}

func (p *pacingTimers) AfterFunc(d time.Duration, f func()) func() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	timer := &pacingTimer{f: f}
	p.pending = append(p.pending, timer)
	return func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		wasPending := !timer.stopped
		timer.stopped = true
		return wasPending
	}
}

func (p *pacingTimers) fire() {
	p.mu.Lock()
	var due []func()
	for _, timer := range p.pending {
		if !timer.stopped {
			timer.stopped = true
			due = append(due, timer.f)
		}
	}
	p.pending = nil
	p.mu.Unlock()
	for _, f := range due {
		f()
	}
}

type testServer struct {
	*httptest.Server
	timers *pacingTimers
}

func newTestServer(t *testing.T, loginRate int) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping API test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	tokens, err := security.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	wordRepo := repository.NewWordRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	settingsService := service.NewSettingsService(repository.NewSettingsRepository(db), models.DefaultQuizConfig())
	authService := service.NewAuthService(userRepo, tokens)

	timers := &pacingTimers{}
	reviewService := service.NewReviewService(service.ReviewOptions{
		Words:     wordRepo,
		Configs:   settingsService,
		History:   reviewRepo,
		Sessions:  reviewRepo,
		Romanizer: lexicon.NewRomanizer(nil),
		AfterFunc: timers.AfterFunc,
	})
	t.Cleanup(reviewService.Close)

	limiter := security.NewRateLimiter(loginRate, time.Minute)
	t.Cleanup(limiter.Stop)

	mux := http.NewServeMux()
	Routes{
		Middleware: NewMiddleware(authService),
		LoginLimit: limiter,
		Auth:       NewAuthHandler(authService),
		Words:      NewWordHandler(service.NewWordService(wordRepo, nil, lexicon.NewRomanizer(nil)), service.NewBackupService(wordRepo)),
		Settings:   NewSettingsHandler(settingsService),
		Review:     NewReviewHandler(reviewService, nil),
	}.Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, timers: timers}
}

// call sends a JSON request and decodes the JSON reply into out when given
func (ts *testServer) call(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (ts *testServer) register(t *testing.T, username string) string {
	t.Helper()
	var auth AuthResponse
	status := ts.call(t, "POST", "/api/register", "", map[string]string{
		"username": username,
		"password": "correct horse",
	}, &auth)
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", status)
	}
	if auth.Token == "" || auth.Username != username {
		t.Fatalf("register response = %+v", auth)
	}
	return auth.Token
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t, 100)
	token := ts.register(t, "mei")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"duplicate username", "POST", "/api/register", "", map[string]string{"username": "mei", "password": "another password"}, http.StatusConflict},
		{"short password", "POST", "/api/register", "", map[string]string{"username": "lin", "password": "short"}, http.StatusBadRequest},
		{"wrong password", "POST", "/api/login", "", map[string]string{"username": "mei", "password": "wrong password"}, http.StatusUnauthorized},
		{"login", "POST", "/api/login", "", map[string]string{"username": "mei", "password": "correct horse"}, http.StatusOK},
		{"me without token", "GET", "/api/me", "", nil, http.StatusUnauthorized},
		{"me with bad token", "GET", "/api/me", "not-a-token", nil, http.StatusUnauthorized},
		{"me", "GET", "/api/me", token, nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ts.call(t, tt.method, tt.path, tt.token, tt.body, nil); got != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, got, tt.want)
			}
		})
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	ts := newTestServer(t, 2)
	creds := map[string]string{"username": "nobody", "password": "whatever123"}

	for i := 0; i < 2; i++ {
		if got := ts.call(t, "POST", "/api/login", "", creds, nil); got != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, got)
		}
	}
	if got := ts.call(t, "POST", "/api/login", "", creds, nil); got != http.StatusTooManyRequests {
		t.Errorf("third attempt status = %d, want 429", got)
	}
}

func TestWordEndpoints(t *testing.T) {
	ts := newTestServer(t, 100)
	token := ts.register(t, "mei")

	var word models.Word
	status := ts.call(t, "POST", "/api/words", token, map[string]string{
		"simp": "你好", "pinyin": "ni3 hao3", "meaning": "hello",
	}, &word)
	if status != http.StatusCreated {
		t.Fatalf("add word status = %d, want 201", status)
	}
	if word.ID == 0 || word.Bank != 1 {
		t.Errorf("added word = %+v", word)
	}

	if got := ts.call(t, "POST", "/api/words", token, map[string]string{"simp": "你好", "meaning": "hi"}, nil); got != http.StatusConflict {
		t.Errorf("duplicate word status = %d, want 409", got)
	}
	if got := ts.call(t, "POST", "/api/words", token, map[string]string{"simp": "abc", "meaning": "letters"}, nil); got != http.StatusBadRequest {
		t.Errorf("non-Han word status = %d, want 400", got)
	}
	if got := ts.call(t, "POST", "/api/words", token, map[string]string{"simp": "朋友"}, nil); got != http.StatusUnprocessableEntity {
		t.Errorf("word without meaning status = %d, want 422", got)
	}

	var due DueCountView
	if got := ts.call(t, "GET", "/api/words/due", token, nil, &due); got != http.StatusOK || due.Due != 1 {
		t.Errorf("due = %d (status %d), want 1", due.Due, got)
	}

	var list WordListView
	if got := ts.call(t, "GET", "/api/words", token, nil, &list); got != http.StatusOK || list.Total != 1 {
		t.Errorf("list total = %d (status %d), want 1", list.Total, got)
	}

	// Another learner cannot see or delete the word
	other := ts.register(t, "lin")
	if got := ts.call(t, "GET", "/api/words", other, nil, &list); got != http.StatusOK || list.Total != 0 {
		t.Errorf("other learner list total = %d, want 0", list.Total)
	}
	path := "/api/words/" + strconv.FormatInt(word.ID, 10)
	if got := ts.call(t, "DELETE", path, other, nil, nil); got != http.StatusNotFound {
		t.Errorf("delete by other learner status = %d, want 404", got)
	}

	if got := ts.call(t, "DELETE", "/api/words/abc", token, nil, nil); got != http.StatusBadRequest {
		t.Errorf("delete with bad id status = %d, want 400", got)
	}
	if got := ts.call(t, "DELETE", path, token, nil, nil); got != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", got)
	}
	if got := ts.call(t, "DELETE", path, token, nil, nil); got != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", got)
	}
}

func TestSettingsEndpoints(t *testing.T) {
	ts := newTestServer(t, 100)
	token := ts.register(t, "mei")

	var cfg models.QuizConfig
	if got := ts.call(t, "GET", "/api/settings", token, nil, &cfg); got != http.StatusOK {
		t.Fatalf("get settings status = %d", got)
	}
	if cfg != models.DefaultQuizConfig() {
		t.Errorf("settings = %+v, want defaults", cfg)
	}

	if got := ts.call(t, "PUT", "/api/settings", token, map[string]interface{}{"num_words": 50}, nil); got != http.StatusBadRequest {
		t.Errorf("out of range num_words status = %d, want 400", got)
	}

	if got := ts.call(t, "PUT", "/api/settings", token, map[string]interface{}{"num_words": 5, "char_set": "trad"}, &cfg); got != http.StatusOK {
		t.Fatalf("put settings status = %d", got)
	}
	ts.call(t, "GET", "/api/settings", token, nil, &cfg)
	if cfg.NumWords != 5 || cfg.CharSet != models.CharSetTraditional || !cfg.UseSound {
		t.Errorf("saved settings = %+v", cfg)
	}
}

func TestReviewSessionOverHTTP(t *testing.T) {
	ts := newTestServer(t, 100)
	token := ts.register(t, "mei")

	if got := ts.call(t, "POST", "/api/review/start", token, nil, nil); got != http.StatusConflict {
		t.Fatalf("start with empty bank status = %d, want 409", got)
	}
	if got := ts.call(t, "GET", "/api/review", token, nil, nil); got != http.StatusNotFound {
		t.Errorf("current without session status = %d, want 404", got)
	}

	ts.call(t, "POST", "/api/words", token, map[string]string{"simp": "你好", "pinyin": "ni3 hao3", "meaning": "hello"}, nil)
	ts.call(t, "PUT", "/api/settings", token, map[string]interface{}{
		"use_flashcards":                 true,
		"use_sound":                      false,
		"use_chinese_speech_recognition": true,
		"use_english_speech_recognition": true,
	}, nil)

	var view ReviewView
	if got := ts.call(t, "POST", "/api/review/start", token, nil, &view); got != http.StatusCreated {
		t.Fatalf("start status = %d, want 201", got)
	}
	if view.Question == nil || len(view.Question.Revealed) == 0 || view.Remaining == 0 {
		t.Fatalf("start view = %+v", view)
	}
	if got := ts.call(t, "POST", "/api/review/start", token, nil, nil); got != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", got)
	}

	var wrong ReviewView
	if got := ts.call(t, "POST", "/api/review/answer", token, map[string]string{"answer": "definitely wrong"}, &wrong); got != http.StatusOK {
		t.Fatalf("wrong answer status = %d", got)
	}
	if wrong.Outcome != "wrong" || wrong.State != "asking" {
		t.Errorf("wrong answer view = %+v", wrong)
	}

	var empty ReviewView
	if got := ts.call(t, "POST", "/api/review/transcript", token, map[string]string{"transcript": "  "}, &empty); got != http.StatusOK {
		t.Errorf("empty transcript status = %d, want 200", got)
	}
	if empty.State != "asking" || empty.Outcome != "" || empty.Notice == "" {
		t.Errorf("empty transcript view = %+v", empty)
	}

	for i := 0; ; i++ {
		if i > 50 {
			t.Fatal("session did not finish")
		}
		if got := ts.call(t, "GET", "/api/review", token, nil, &view); got != http.StatusOK {
			t.Fatalf("current status = %d", got)
		}
		if view.State == "finished" {
			break
		}
		if view.State != "asking" {
			ts.timers.fire()
			continue
		}
		var answered ReviewView
		ts.call(t, "POST", "/api/review/flashcard", token, map[string]bool{"known": true}, &answered)
		if answered.State != "correct" && answered.State != "finished" {
			t.Fatalf("flashcard view = %+v, want state correct", answered)
		}
		ts.timers.fire()
	}

	if view.Report == nil || len(view.Report.Scores) != 1 {
		t.Fatalf("report = %+v", view.Report)
	}
	if view.Report.Scores[0].Char != "你好" {
		t.Errorf("report char = %q", view.Report.Scores[0].Char)
	}
	if view.Report.ContinuationAvailable {
		t.Error("continuation available after reviewing the only due word")
	}

	var history HistoryView
	if got := ts.call(t, "GET", "/api/review/history", token, nil, &history); got != http.StatusOK {
		t.Fatalf("history status = %d", got)
	}
	if len(history.Sessions) != 1 || history.Sessions[0].TotalWords != 1 {
		t.Errorf("history = %+v", history.Sessions)
	}

	if got := ts.call(t, "POST", "/api/review/idk", token, nil, nil); got != http.StatusNotFound {
		t.Errorf("idk after finish status = %d, want 404", got)
	}
}

func TestAbandonReviewSession(t *testing.T) {
	ts := newTestServer(t, 100)
	token := ts.register(t, "mei")
	ts.call(t, "POST", "/api/words", token, map[string]string{"simp": "谢谢", "pinyin": "xie4 xie5", "meaning": "thanks"}, nil)

	if got := ts.call(t, "POST", "/api/review/start", token, nil, nil); got != http.StatusCreated {
		t.Fatalf("start status = %d", got)
	}
	if got := ts.call(t, "POST", "/api/review/flashcard", token, map[string]bool{"known": true}, nil); got != http.StatusBadRequest {
		t.Errorf("flashcard with flashcards off status = %d, want 400", got)
	}
	if got := ts.call(t, "POST", "/api/review/abandon", token, nil, nil); got != http.StatusNoContent {
		t.Fatalf("abandon status = %d, want 204", got)
	}
	if got := ts.call(t, "GET", "/api/review", token, nil, nil); got != http.StatusNotFound {
		t.Errorf("current after abandon status = %d, want 404", got)
	}
	if got := ts.call(t, "POST", "/api/review/start", token, nil, nil); got != http.StatusCreated {
		t.Errorf("restart after abandon status = %d, want 201", got)
	}
}
