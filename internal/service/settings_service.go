package service

import (
	"context"

	"hanzidrill/internal/models"
)

// SettingsStore persists each learner's quiz configuration
type SettingsStore interface {
	GetQuizConfig(ctx context.Context, userID int64) (*models.QuizConfig, error)
	SaveQuizConfig(ctx context.Context, userID int64, cfg models.QuizConfig) error
}

// SettingsService loads and saves quiz configuration
type SettingsService struct {
	store    SettingsStore
	defaults models.QuizConfig
}

// NewSettingsService creates a settings service; defaults are returned to
// learners who never saved their own
func NewSettingsService(store SettingsStore, defaults models.QuizConfig) *SettingsService {
	return &SettingsService{store: store, defaults: defaults}
}

// Get returns the learner's configuration
func (s *SettingsService) Get(ctx context.Context, userID int64) (models.QuizConfig, error) {
	cfg, err := s.store.GetQuizConfig(ctx, userID)
	if err != nil {
		return models.QuizConfig{}, err
	}
	if cfg == nil {
		return s.defaults, nil
	}
	return *cfg, nil
}

// Save validates and stores the learner's configuration
func (s *SettingsService) Save(ctx context.Context, userID int64, cfg models.QuizConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return s.store.SaveQuizConfig(ctx, userID, cfg)
}
