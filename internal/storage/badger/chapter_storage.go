package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ChapterStorage implements the ChapterStorage interface for Badger.
// Chapters are only ever created through Manager.CommitExtraction so
// that the READY transition and the chapter row land atomically.
type ChapterStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewChapterStorage creates a new ChapterStorage instance
func NewChapterStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ChapterStorage {
	return &ChapterStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ChapterStorage) GetChapter(bookID string, chapterNumber int) (*models.Chapter, error) {
	var chapter models.Chapter
	key := models.ChapterKey(bookID, chapterNumber)
	if err := s.db.Store().Get(key, &chapter); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("chapter not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}
	return &chapter, nil
}

func (s *ChapterStorage) GetChaptersByBook(bookID string) ([]*models.Chapter, error) {
	var chapters []models.Chapter
	if err := s.db.Store().Find(&chapters, badgerhold.Where("BookID").Eq(bookID).Index("BookID").SortBy("ChapterNumber")); err != nil {
		return nil, fmt.Errorf("failed to get chapters for book %s: %w", bookID, err)
	}

	result := make([]*models.Chapter, len(chapters))
	for i := range chapters {
		result[i] = &chapters[i]
	}
	return result, nil
}

func (s *ChapterStorage) DeleteChaptersByBook(bookID string) error {
	if err := s.db.Store().DeleteMatching(&models.Chapter{}, badgerhold.Where("BookID").Eq(bookID).Index("BookID")); err != nil {
		return fmt.Errorf("failed to delete chapters for book %s: %w", bookID, err)
	}
	return nil
}
