package interfaces

import (
	"github.com/ternarybob/folio/internal/models"
)

// BookStorage persists Book lifecycle records.
type BookStorage interface {
	SaveBook(book *models.Book) error
	GetBook(id string) (*models.Book, error)
	ListBooks() ([]*models.Book, error)
	UpdateBook(book *models.Book) error
	DeleteBook(id string) error
	// SetBookError moves a book to the ERROR terminal state with a message.
	SetBookError(id, message string) error
}

// ChapterStorage persists extracted chapter content.
type ChapterStorage interface {
	GetChapter(bookID string, chapterNumber int) (*models.Chapter, error)
	GetChaptersByBook(bookID string) ([]*models.Chapter, error)
	DeleteChaptersByBook(bookID string) error
}

// ImageStorage persists extracted image metadata.
type ImageStorage interface {
	GetImagesByBook(bookID string) ([]*models.ExtractedImage, error)
	DeleteImagesByBook(bookID string) error
}

// ProgressStorage persists the per-book pipeline progress record.
type ProgressStorage interface {
	SaveProgress(progress *models.ProcessingProgress) error
	GetProgress(bookID string) (*models.ProcessingProgress, error)
	DeleteProgress(bookID string) error
}

// ExtractionResult is everything the pipeline commits when a book
// reaches READY. Chapter creation, image inserts and the book update
// are applied in one atomic transaction.
type ExtractionResult struct {
	Chapter *models.Chapter
	Images  []*models.ExtractedImage
}

// StorageManager aggregates the per-entity storages over one database
// connection, owned by the application and passed into services.
type StorageManager interface {
	BookStorage() BookStorage
	ChapterStorage() ChapterStorage
	ImageStorage() ImageStorage
	ProgressStorage() ProgressStorage

	// CommitExtraction atomically creates the chapter, inserts the image
	// rows and transitions the book to READY. On error nothing is applied.
	CommitExtraction(book *models.Book, result *ExtractionResult) error

	// DeleteBookData removes the book together with its chapters, images
	// and progress record.
	DeleteBookData(bookID string) error

	Close() error
}
