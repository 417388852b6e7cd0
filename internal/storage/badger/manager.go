package badger

import (
	"fmt"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	book     interfaces.BookStorage
	chapter  interfaces.ChapterStorage
	image    interfaces.ImageStorage
	progress interfaces.ProgressStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		book:     NewBookStorage(db, logger),
		chapter:  NewChapterStorage(db, logger),
		image:    NewImageStorage(db, logger),
		progress: NewProgressStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// BookStorage returns the Book storage interface
func (m *Manager) BookStorage() interfaces.BookStorage {
	return m.book
}

// ChapterStorage returns the Chapter storage interface
func (m *Manager) ChapterStorage() interfaces.ChapterStorage {
	return m.chapter
}

// ImageStorage returns the Image storage interface
func (m *Manager) ImageStorage() interfaces.ImageStorage {
	return m.image
}

// ProgressStorage returns the Progress storage interface
func (m *Manager) ProgressStorage() interfaces.ProgressStorage {
	return m.progress
}

// CommitExtraction applies the full result of a successful pipeline run
// in one Badger transaction: the chapter row, the image rows and the
// book's READY transition. A failure anywhere rolls the whole commit
// back so the book is never READY with partial content.
func (m *Manager) CommitExtraction(book *models.Book, result *interfaces.ExtractionResult) error {
	if book == nil || result == nil || result.Chapter == nil {
		return fmt.Errorf("commit requires a book and a chapter")
	}

	now := time.Now()

	book.Status = models.BookStatusReady
	book.ErrorMessage = ""
	book.UpdatedAt = now

	chapter := result.Chapter
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = now
	}

	store := m.db.Store()
	err := store.Badger().Update(func(txn *badgerdb.Txn) error {
		if err := store.TxUpsert(txn, chapter.ID, chapter); err != nil {
			return fmt.Errorf("failed to persist chapter: %w", err)
		}
		for _, img := range result.Images {
			if img.CreatedAt.IsZero() {
				img.CreatedAt = now
			}
			if err := store.TxUpsert(txn, img.ID, img); err != nil {
				return fmt.Errorf("failed to persist image %s: %w", img.Filename, err)
			}
		}
		if err := store.TxUpsert(txn, book.ID, book); err != nil {
			return fmt.Errorf("failed to persist book: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info().
		Str("book_id", book.ID).
		Int("images", len(result.Images)).
		Int("word_count", book.WordCount).
		Msg("Extraction result committed")
	return nil
}

// DeleteBookData removes the book together with its chapters, images
// and progress record.
func (m *Manager) DeleteBookData(bookID string) error {
	if err := m.chapter.DeleteChaptersByBook(bookID); err != nil {
		return err
	}
	if err := m.image.DeleteImagesByBook(bookID); err != nil {
		return err
	}
	if err := m.progress.DeleteProgress(bookID); err != nil {
		return err
	}
	if err := m.book.DeleteBook(bookID); err != nil {
		return err
	}

	m.logger.Info().Str("book_id", bookID).Msg("Book data deleted")
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
