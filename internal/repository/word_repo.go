package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hanzidrill/internal/database"
	"hanzidrill/internal/models"
)

// WordRepository handles word bank database operations
type WordRepository struct {
	db *database.DB
}

// NewWordRepository creates a new word repository
func NewWordRepository(db *database.DB) *WordRepository {
	return &WordRepository{db: db}
}

const wordColumns = `id, user_id, simp, trad, pinyin, meaning, bank, due_date, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWord(row rowScanner) (*models.Word, error) {
	w := &models.Word{}
	err := row.Scan(&w.ID, &w.UserID, &w.Simp, &w.Trad, &w.Pinyin, &w.Meaning,
		&w.Bank, &w.DueDate, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// CreateWord inserts a new word into the learner's bank and sets its ID
func (r *WordRepository) CreateWord(ctx context.Context, w *models.Word) error {
	return insertWord(ctx, r.db, w)
}

func insertWord(ctx context.Context, db database.DBTX, w *models.Word) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO words (user_id, simp, trad, pinyin, meaning, bank, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := db.ExecReturningID(ctx, query, w.UserID, w.Simp, w.Trad, w.Pinyin, w.Meaning,
		w.Bank, w.DueDate, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	w.ID = id
	return nil
}

// GetWords returns every word in a learner's bank, oldest first
func (r *WordRepository) GetWords(ctx context.Context, userID int64) ([]models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE user_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, *w)
	}
	return words, rows.Err()
}

// GetWord returns one of the learner's words, or nil if it does not exist
func (r *WordRepository) GetWord(ctx context.Context, userID, wordID int64) (*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE id = ? AND user_id = ?`
	w, err := scanWord(r.db.QueryRowContext(ctx, query, wordID, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return w, nil
}

// FindBySimp returns the learner's word with the given simplified form, or nil
func (r *WordRepository) FindBySimp(ctx context.Context, userID int64, simp string) (*models.Word, error) {
	query := `SELECT ` + wordColumns + ` FROM words WHERE user_id = ? AND simp = ?`
	w, err := scanWord(r.db.QueryRowContext(ctx, query, userID, simp))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find word: %w", err)
	}
	return w, nil
}

// CountWords returns the size of a learner's bank
func (r *WordRepository) CountWords(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return n, nil
}

// CountDue returns how many words are due on or before today.
// Dates are stored as YYYY-MM-DD so they compare correctly as strings.
func (r *WordRepository) CountDue(ctx context.Context, userID int64, today models.Date) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM words WHERE user_id = ? AND due_date <= ?`
	if err := r.db.QueryRowContext(ctx, query, userID, today).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count due words: %w", err)
	}
	return n, nil
}

// DeleteWord removes a word from the learner's bank
func (r *WordRepository) DeleteWord(ctx context.Context, userID, wordID int64) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_results WHERE word_id = ?`, wordID); err != nil {
			return fmt.Errorf("failed to delete review results: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM words WHERE id = ? AND user_id = ?`, wordID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete word: %w", err)
		}
		return requireOneRow(res)
	})
}

// UpdateBankAndDueDate writes a word's new bank and due date. Both columns
// change together or not at all.
func (r *WordRepository) UpdateBankAndDueDate(ctx context.Context, wordID int64, bank int, due models.Date) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		// MySQL reports zero affected rows for a no-op update, so existence is checked first
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE id = ?`, wordID).Scan(&n); err != nil {
			return fmt.Errorf("failed to look up word %d: %w", wordID, err)
		}
		if n == 0 {
			return fmt.Errorf("word %d: %w", wordID, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE words SET bank = ?, due_date = ? WHERE id = ?`, bank, due, wordID); err != nil {
			return fmt.Errorf("failed to update word %d: %w", wordID, err)
		}
		return nil
	})
}

// ImportWords inserts or refreshes words for a learner in one transaction.
// Words are matched on their simplified form; existing rows keep their ID
// and creation time.
func (r *WordRepository) ImportWords(ctx context.Context, userID int64, words []models.Word) (int, error) {
	columns := []string{"user_id", "simp", "trad", "pinyin", "meaning", "bank", "due_date"}
	query := r.db.Dialect.Upsert("words", []string{"user_id", "simp"}, columns)

	imported := 0
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, w := range words {
			_, err := tx.ExecContext(ctx, query, userID, w.Simp, w.Trad, w.Pinyin, w.Meaning,
				w.Bank, w.DueDate)
			if err != nil {
				return fmt.Errorf("failed to import word %q: %w", w.Simp, err)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return imported, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
