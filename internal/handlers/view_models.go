package handlers

import (
	"time"

	"hanzidrill/internal/models"
	"hanzidrill/internal/quiz"
	"hanzidrill/internal/service"
)

// AudioLocator maps prompt text to the URL its synthesized audio is served at
type AudioLocator interface {
	URLFor(text, lang, voice string) string
}

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
}

type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type WordListView struct {
	Words []models.Word `json:"words"`
	Total int           `json:"total"`
}

type DueCountView struct {
	Due int `json:"due"`
}

// QuestionView describes the active question without giving the answer away
type QuestionView struct {
	Answer      quiz.Category `json:"answer"`
	Question    quiz.Category `json:"question"`
	Prompt      string        `json:"prompt"`
	AudioURL    string        `json:"audio_url,omitempty"`
	SpeechLang  string        `json:"speech_lang,omitempty"`
	Handwriting bool          `json:"handwriting"`
	Flashcard   bool          `json:"flashcard"`
	// Revealed holds the accepted answers after "I don't know" or in flashcard mode
	Revealed []string `json:"revealed,omitempty"`
}

// ReviewView is the JSON form of a learner's review state
type ReviewView struct {
	SessionID    string                `json:"session_id,omitempty"`
	State        string                `json:"state"`
	Outcome      string                `json:"outcome,omitempty"`
	Notice       string                `json:"notice,omitempty"`
	Question     *QuestionView         `json:"question,omitempty"`
	Remaining    int                   `json:"remaining"`
	Total        int                   `json:"total"`
	CorrectCount int                   `json:"correct_count"`
	Report       *models.SessionReport `json:"report,omitempty"`
}

type HistoryView struct {
	Sessions []models.ReviewSessionRecord `json:"sessions"`
}

// newReviewView builds the learner-facing view of st
func newReviewView(st service.ReviewState, audio AudioLocator) ReviewView {
	if st.Finished {
		return ReviewView{
			SessionID: st.Session.ID,
			State:     quiz.Finished.String(),
			Notice:    st.Notice,
			Report:    st.Report,
		}
	}

	s := st.Session
	view := ReviewView{
		SessionID:    s.ID,
		State:        s.State.String(),
		Notice:       st.Notice,
		Remaining:    s.Remaining(),
		Total:        s.InitialPoolSize,
		CorrectCount: s.CorrectCount,
	}

	cfg := s.Config
	q := &QuestionView{
		Answer:      s.Active.Answer,
		Question:    s.Active.Question,
		Prompt:      s.Question(),
		Handwriting: cfg.UseHandwriting && s.Active.Answer == quiz.Character,
		Flashcard:   cfg.UseFlashcards,
	}
	if audio != nil && cfg.UseSound && s.Active.Question == quiz.Pronunciation {
		q.AudioURL = audio.URLFor(s.Word().Character(cfg.CharSet), quiz.PromptLang, "")
	}
	if (s.Active.Answer == quiz.Meaning && cfg.UseEnglishSpeechRecognition) ||
		(s.Active.Answer != quiz.Meaning && cfg.UseChineseSpeechRecognition) {
		q.SpeechLang = s.SpeechLang()
	}
	if s.State == quiz.Skipped || cfg.UseFlashcards {
		q.Revealed = s.Expected().Choices()
	}
	view.Question = q
	return view
}
