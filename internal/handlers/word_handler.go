package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"hanzidrill/internal/service"
	"hanzidrill/internal/validation"
)

// WordHandler manages the learner's word bank
type WordHandler struct {
	wordService   *service.WordService
	backupService *service.BackupService
}

// NewWordHandler creates a new word handler
func NewWordHandler(wordService *service.WordService, backupService *service.BackupService) *WordHandler {
	return &WordHandler{wordService: wordService, backupService: backupService}
}

// ListWords returns every word in the bank
func (h *WordHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	words, err := h.wordService.ListWords(r.Context(), user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error listing words", err)
		return
	}
	respondJSON(w, http.StatusOK, WordListView{Words: words, Total: len(words)})
}

// AddWord adds one word, filling missing fields from the dictionary
func (h *WordHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	var req service.NewWordInput
	if !decodeJSON(w, r, &req) {
		return
	}

	word, err := h.wordService.AddWord(r.Context(), user.ID, req)
	if err != nil {
		var ve validation.ValidationError
		switch {
		case errors.As(err, &ve):
			respondWithError(w, http.StatusBadRequest, ve.Error(), "", nil)
		case errors.Is(err, service.ErrWordExists):
			respondWithError(w, http.StatusConflict, "Word is already in your bank", "", nil)
		case errors.Is(err, service.ErrMissingMeaning):
			respondWithError(w, http.StatusUnprocessableEntity, err.Error(), "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error adding word", err)
		}
		return
	}
	respondJSON(w, http.StatusCreated, word)
}

// DeleteWord removes a word from the bank
func (h *WordHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	wordID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid word ID", "", nil)
		return
	}

	err = h.wordService.DeleteWord(r.Context(), user.ID, wordID)
	if errors.Is(err, service.ErrWordNotFound) {
		respondWithError(w, http.StatusNotFound, "Word not found", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error deleting word", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DueCount returns how many words are due today
func (h *WordHandler) DueCount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	n, err := h.wordService.DueCount(r.Context(), user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error counting due words", err)
		return
	}
	respondJSON(w, http.StatusOK, DueCountView{Due: n})
}

// Export downloads the word bank as a backup document
func (h *WordHandler) Export(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename=hanzidrill_words.json")
	if err := h.backupService.Export(r.Context(), user.ID, w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export words", "Error exporting words", err)
	}
}

// Import restores words from an uploaded backup document
func (h *WordHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, 10*maxRequestBody)

	n, err := h.backupService.Import(r.Context(), user.ID, r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import words", "Error importing words", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"imported": n})
}
