package handlers

import (
	"net/http"

	"hanzidrill/internal/service"
)

// SettingsHandler reads and writes the learner's quiz configuration
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the learner's configuration
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	cfg, err := h.settingsService.Get(r.Context(), user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading settings", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// UpdateSettings replaces the learner's configuration. Omitted fields keep
// their current value.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	cfg, err := h.settingsService.Get(r.Context(), user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error loading settings", err)
		return
	}
	if !decodeJSON(w, r, &cfg) {
		return
	}

	if err := cfg.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	if err := h.settingsService.Save(r.Context(), user.ID, cfg); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving settings", err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}
