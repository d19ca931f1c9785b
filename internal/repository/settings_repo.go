package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hanzidrill/internal/database"
	"hanzidrill/internal/models"
)

// SettingsRepository stores each learner's quiz configuration as JSON
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetQuizConfig returns the learner's saved configuration, or nil if they never saved one
func (r *SettingsRepository) GetQuizConfig(ctx context.Context, userID int64) (*models.QuizConfig, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT quiz_config FROM user_settings WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	cfg := models.DefaultQuizConfig()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &cfg, nil
}

// SaveQuizConfig creates or replaces the learner's configuration
func (r *SettingsRepository) SaveQuizConfig(ctx context.Context, userID int64, cfg models.QuizConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	query := r.db.Dialect.Upsert("user_settings", []string{"user_id"}, []string{"user_id", "quiz_config"})
	if _, err := r.db.ExecContext(ctx, query, userID, string(raw)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
