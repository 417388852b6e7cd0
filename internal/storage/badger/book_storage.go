package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// BookStorage implements the BookStorage interface for Badger
type BookStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewBookStorage creates a new BookStorage instance
func NewBookStorage(db *BadgerDB, logger arbor.ILogger) interfaces.BookStorage {
	return &BookStorage{
		db:     db,
		logger: logger,
	}
}

func (s *BookStorage) SaveBook(book *models.Book) error {
	if book.ID == "" {
		return fmt.Errorf("book ID is required")
	}

	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	if err := s.db.Store().Upsert(book.ID, book); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

func (s *BookStorage) GetBook(id string) (*models.Book, error) {
	var book models.Book
	if err := s.db.Store().Get(id, &book); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: %s", models.ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

func (s *BookStorage) ListBooks() ([]*models.Book, error) {
	var books []models.Book
	if err := s.db.Store().Find(&books, badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	result := make([]*models.Book, len(books))
	for i := range books {
		result[i] = &books[i]
	}
	return result, nil
}

func (s *BookStorage) UpdateBook(book *models.Book) error {
	return s.SaveBook(book)
}

func (s *BookStorage) DeleteBook(id string) error {
	if err := s.db.Store().Delete(id, &models.Book{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}

// SetBookError transitions a book to the ERROR terminal state with a message.
func (s *BookStorage) SetBookError(id, message string) error {
	book, err := s.GetBook(id)
	if err != nil {
		return err
	}

	book.Status = models.BookStatusError
	book.ErrorMessage = message

	if err := s.SaveBook(book); err != nil {
		return fmt.Errorf("failed to mark book as errored: %w", err)
	}

	s.logger.Warn().
		Str("book_id", id).
		Str("error", message).
		Msg("Book moved to ERROR state")
	return nil
}
