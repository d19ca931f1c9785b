package handlers

import (
	"errors"
	"net/http"

	"hanzidrill/internal/quiz"
	"hanzidrill/internal/service"
)

// ReviewHandler drives a learner's review session
type ReviewHandler struct {
	reviewService *service.ReviewService
	audio         AudioLocator
}

// NewReviewHandler creates a new review handler; audio may be nil when
// prompts are not synthesized
func NewReviewHandler(reviewService *service.ReviewService, audio AudioLocator) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, audio: audio}
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

type strokeRequest struct {
	Complete bool `json:"complete"`
}

type flashcardRequest struct {
	Known bool `json:"known"`
}

// Start draws a new test set and opens a session
func (h *ReviewHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	st, err := h.reviewService.Start(r.Context(), user.ID)
	if err != nil {
		h.respondWithReviewError(w, "Error starting review session", err)
		return
	}
	respondJSON(w, http.StatusCreated, newReviewView(st, h.audio))
}

// Current returns the active question, or the report of a session that just ended
func (h *ReviewHandler) Current(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	st, err := h.reviewService.Current(r.Context(), user.ID)
	if err != nil {
		h.respondWithReviewError(w, "Error loading review session", err)
		return
	}
	respondJSON(w, http.StatusOK, newReviewView(st, h.audio))
}

// Answer grades a typed answer
func (h *ReviewHandler) Answer(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, st, err := h.reviewService.Submit(r.Context(), user.ID, req.Answer)
	if err != nil {
		h.respondWithReviewError(w, "Error grading answer", err)
		return
	}
	view := newReviewView(st, h.audio)
	view.Outcome = out.String()
	respondJSON(w, http.StatusOK, view)
}

// Transcript grades what the browser's speech recognizer heard. An empty
// transcript leaves the question open.
func (h *ReviewHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	var req transcriptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	out, st, err := h.reviewService.SubmitTranscript(r.Context(), user.ID, req.Transcript)
	if errors.Is(err, quiz.ErrNoSpeechDetected) {
		respondJSON(w, http.StatusOK, newReviewView(st, h.audio))
		return
	}
	if err != nil {
		h.respondWithReviewError(w, "Error grading transcript", err)
		return
	}
	view := newReviewView(st, h.audio)
	view.Outcome = out.String()
	respondJSON(w, http.StatusOK, view)
}

// Idk reveals the answer and lowers the word's score
func (h *ReviewHandler) Idk(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	st, err := h.reviewService.MarkIdk(r.Context(), user.ID)
	if err != nil {
		h.respondWithReviewError(w, "Error recording I don't know", err)
		return
	}
	respondJSON(w, http.StatusOK, newReviewView(st, h.audio))
}

// Stroke relays a handwriting result
func (h *ReviewHandler) Stroke(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	var req strokeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.reviewService.Stroke(r.Context(), user.ID, req.Complete)
	if err != nil {
		h.respondWithReviewError(w, "Error recording stroke", err)
		return
	}
	respondJSON(w, http.StatusOK, newReviewView(st, h.audio))
}

// Flashcard self-grades the active card
func (h *ReviewHandler) Flashcard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	var req flashcardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	st, err := h.reviewService.Flashcard(r.Context(), user.ID, req.Known)
	if err != nil {
		h.respondWithReviewError(w, "Error grading flashcard", err)
		return
	}
	respondJSON(w, http.StatusOK, newReviewView(st, h.audio))
}

// Abandon discards the active session
func (h *ReviewHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if err := h.reviewService.Abandon(r.Context(), user.ID); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error abandoning review session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// History lists the learner's recent sessions
func (h *ReviewHandler) History(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	sessions, err := h.reviewService.History(r.Context(), user.ID, historyLimit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading review history", err)
		return
	}
	respondJSON(w, http.StatusOK, HistoryView{Sessions: sessions})
}

func (h *ReviewHandler) respondWithReviewError(w http.ResponseWriter, logMsg string, err error) {
	switch {
	case errors.Is(err, quiz.ErrNoWordsDue):
		respondWithError(w, http.StatusConflict, "No words are due for review", "", nil)
	case errors.Is(err, service.ErrSessionActive):
		respondWithError(w, http.StatusConflict, "A review session is already in progress", "", nil)
	case errors.Is(err, service.ErrNoSession), errors.Is(err, quiz.ErrFinished):
		respondWithError(w, http.StatusNotFound, ErrNoActiveSession, "", nil)
	case errors.Is(err, quiz.ErrNotAsking):
		respondWithError(w, http.StatusConflict, "No question is awaiting an answer", "", nil)
	case errors.Is(err, quiz.ErrModalityDisabled):
		respondWithError(w, http.StatusBadRequest, "That answer mode is not enabled for this question", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
