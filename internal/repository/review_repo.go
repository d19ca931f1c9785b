package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"hanzidrill/internal/database"
	"hanzidrill/internal/models"
	"hanzidrill/internal/quiz"
)

// ReviewRepository records finished review sessions and keeps a snapshot of
// each learner's in-progress session
type ReviewRepository struct {
	db *database.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *database.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// RecordSession stores a finished session with one result row per word
func (r *ReviewRepository) RecordSession(ctx context.Context, rec models.ReviewSessionRecord, submissions []models.ScoreSubmission, updates []models.WordUpdate) error {
	byWord := make(map[int64]models.WordUpdate, len(updates))
	for _, u := range updates {
		byWord[u.WordID] = u
	}

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := `
			INSERT INTO review_sessions (id, user_id, started_at, finished_at, total_words, perfect)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.UserID, rec.StartedAt, rec.FinishedAt,
			rec.TotalWords, rec.Perfect); err != nil {
			return fmt.Errorf("failed to record review session: %w", err)
		}

		query = `
			INSERT INTO review_results (session_id, word_id, score, new_bank, new_due_date)
			VALUES (?, ?, ?, ?, ?)
		`
		for _, s := range submissions {
			u := byWord[s.WordID]
			if _, err := tx.ExecContext(ctx, query, rec.ID, s.WordID, s.Score, u.Bank, u.DueDate); err != nil {
				return fmt.Errorf("failed to record result for word %d: %w", s.WordID, err)
			}
		}
		return nil
	})
}

// ListSessions returns the learner's most recent finished sessions, newest first
func (r *ReviewRepository) ListSessions(ctx context.Context, userID int64, limit int) ([]models.ReviewSessionRecord, error) {
	query := `
		SELECT id, user_id, started_at, finished_at, total_words, perfect
		FROM review_sessions
		WHERE user_id = ?
		ORDER BY finished_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list review sessions: %w", err)
	}
	defer rows.Close()

	var records []models.ReviewSessionRecord
	for rows.Next() {
		var rec models.ReviewSessionRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.StartedAt, &rec.FinishedAt,
			&rec.TotalWords, &rec.Perfect); err != nil {
			return nil, fmt.Errorf("failed to scan review session: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Save stores the learner's in-progress session, replacing any earlier snapshot
func (r *ReviewRepository) Save(ctx context.Context, s quiz.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	query := r.db.Dialect.Upsert("review_state", []string{"user_id"}, []string{"user_id", "session_json"})
	if _, err := r.db.ExecContext(ctx, query, s.UserID, string(raw)); err != nil {
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

// Load returns the learner's saved session, or nil if there is none
func (r *ReviewRepository) Load(ctx context.Context, userID int64) (*quiz.Session, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT session_json FROM review_state WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}

	var s quiz.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session snapshot: %w", err)
	}
	return &s, nil
}

// Delete removes the learner's snapshot
func (r *ReviewRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM review_state WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete session snapshot: %w", err)
	}
	return nil
}
