package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"hanzidrill/internal/models"
	"hanzidrill/internal/quiz"
	"hanzidrill/internal/validation"
)

const backupVersion = "1.0"

// BackupData is the JSON document written by Export and read by Import
type BackupData struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Words      []WordBackup `json:"words"`
}

// WordBackup is one word bank entry with its review progress
type WordBackup struct {
	Simp    string      `json:"simp"`
	Trad    string      `json:"trad,omitempty"`
	Pinyin  string      `json:"pinyin"`
	Meaning string      `json:"meaning"`
	Bank    int         `json:"bank"`
	DueDate models.Date `json:"due_date"`
}

// BackupWordStore is the word storage used for export and import
type BackupWordStore interface {
	GetWords(ctx context.Context, userID int64) ([]models.Word, error)
	ImportWords(ctx context.Context, userID int64, words []models.Word) (int, error)
}

// BackupService exports and restores a learner's word bank
type BackupService struct {
	words BackupWordStore
	now   func() time.Time
}

// NewBackupService creates a new backup service
func NewBackupService(words BackupWordStore) *BackupService {
	return &BackupService{words: words, now: time.Now}
}

// ExportToFile writes the learner's word bank to outputPath
func (s *BackupService) ExportToFile(ctx context.Context, userID int64, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return s.Export(ctx, userID, file)
}

// Export writes the learner's word bank as indented JSON
func (s *BackupService) Export(ctx context.Context, userID int64, w io.Writer) error {
	words, err := s.words.GetWords(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to export words: %w", err)
	}

	backup := BackupData{
		Version:    backupVersion,
		ExportedAt: s.now(),
		Words:      make([]WordBackup, 0, len(words)),
	}
	for _, word := range words {
		backup.Words = append(backup.Words, WordBackup{
			Simp:    word.Simp,
			Trad:    word.Trad,
			Pinyin:  word.Pinyin,
			Meaning: word.Meaning,
			Bank:    word.Bank,
			DueDate: word.DueDate,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d words for user %d", len(backup.Words), userID)
	return nil
}

// ImportFile restores words from a backup file
func (s *BackupService) ImportFile(ctx context.Context, userID int64, inputPath string) (int, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.Import(ctx, userID, file)
}

// Import restores words from a backup document. Existing words with the same
// simplified form are overwritten. Missing due dates default to today and
// banks outside 1-5 are clamped.
func (s *BackupService) Import(ctx context.Context, userID int64, r io.Reader) (int, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	today := models.DateOf(s.now())
	words := make([]models.Word, 0, len(backup.Words))
	for i, wb := range backup.Words {
		if err := validation.ValidateHanzi("simp", wb.Simp); err != nil {
			return 0, fmt.Errorf("word %d: %w", i+1, err)
		}
		word := models.Word{
			UserID:  userID,
			Simp:    wb.Simp,
			Trad:    wb.Trad,
			Pinyin:  wb.Pinyin,
			Meaning: wb.Meaning,
			Bank:    clampImportedBank(wb.Bank),
			DueDate: wb.DueDate,
		}
		if word.DueDate.IsZero() {
			word.DueDate = today
		}
		words = append(words, word)
	}

	n, err := s.words.ImportWords(ctx, userID, words)
	if err != nil {
		return 0, fmt.Errorf("failed to import words: %w", err)
	}
	log.Printf("Imported %d words for user %d", n, userID)
	return n, nil
}

func clampImportedBank(bank int) int {
	if bank < quiz.MinBank {
		return quiz.MinBank
	}
	if bank > quiz.MaxBank {
		return quiz.MaxBank
	}
	return bank
}
