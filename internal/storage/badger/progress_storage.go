package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ProgressStorage implements the ProgressStorage interface for Badger
type ProgressStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewProgressStorage creates a new ProgressStorage instance
func NewProgressStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ProgressStorage {
	return &ProgressStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ProgressStorage) SaveProgress(progress *models.ProcessingProgress) error {
	if progress.BookID == "" {
		return fmt.Errorf("book ID is required")
	}
	progress.UpdatedAt = time.Now()

	if err := s.db.Store().Upsert(progress.BookID, progress); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (s *ProgressStorage) GetProgress(bookID string) (*models.ProcessingProgress, error) {
	var progress models.ProcessingProgress
	if err := s.db.Store().Get(bookID, &progress); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("progress not found for book: %s", bookID)
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &progress, nil
}

func (s *ProgressStorage) DeleteProgress(bookID string) error {
	if err := s.db.Store().Delete(bookID, &models.ProcessingProgress{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}
