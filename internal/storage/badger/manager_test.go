package badger

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "badger-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	logger := arbor.NewLogger()

	return &Manager{
		db:       db,
		book:     NewBookStorage(db, logger),
		chapter:  NewChapterStorage(db, logger),
		image:    NewImageStorage(db, logger),
		progress: NewProgressStorage(db, logger),
		logger:   logger,
	}
}

func TestBookLifecycle(t *testing.T) {
	m := newTestManager(t)

	book := &models.Book{
		ID:      "book_test-1",
		Title:   "sample",
		PDFPath: "pdfs/book_test-1/sample.pdf",
		Status:  models.BookStatusProcessing,
	}
	require.NoError(t, m.BookStorage().SaveBook(book))
	assert.False(t, book.CreatedAt.IsZero(), "SaveBook should stamp CreatedAt")

	loaded, err := m.BookStorage().GetBook("book_test-1")
	require.NoError(t, err)
	assert.Equal(t, "sample", loaded.Title)
	assert.Equal(t, models.BookStatusProcessing, loaded.Status)

	_, err = m.BookStorage().GetBook("book_missing")
	assert.ErrorIs(t, err, models.ErrBookNotFound)

	require.NoError(t, m.BookStorage().SetBookError("book_test-1", "Unknown error during processing"))
	loaded, err = m.BookStorage().GetBook("book_test-1")
	require.NoError(t, err)
	assert.Equal(t, models.BookStatusError, loaded.Status)
	assert.Equal(t, "Unknown error during processing", loaded.ErrorMessage)
}

func TestCommitExtraction(t *testing.T) {
	m := newTestManager(t)

	book := &models.Book{
		ID:      "book_test-2",
		Title:   "sample",
		PDFPath: "pdfs/book_test-2/sample.pdf",
		Status:  models.BookStatusProcessing,
	}
	require.NoError(t, m.BookStorage().SaveBook(book))

	book.TotalPages = 3
	book.WordCount = 120

	result := &interfaces.ExtractionResult{
		Chapter: &models.Chapter{
			ID:            models.ChapterKey(book.ID, 1),
			BookID:        book.ID,
			ChapterNumber: 1,
			Title:         "Full Book",
			Content:       "extracted text",
			WordCount:     120,
			StartPage:     1,
			EndPage:       3,
		},
		Images: []*models.ExtractedImage{
			{
				ID:         models.ImageKey(book.ID, "page-1.png"),
				BookID:     book.ID,
				Filename:   "page-1.png",
				PageNumber: 1,
				Width:      900,
				Height:     1200,
			},
			{
				ID:         models.ImageKey(book.ID, "page-2.png"),
				BookID:     book.ID,
				Filename:   "page-2.png",
				PageNumber: 2,
				Width:      900,
				Height:     1200,
			},
		},
	}

	require.NoError(t, m.CommitExtraction(book, result))

	loaded, err := m.BookStorage().GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookStatusReady, loaded.Status)
	assert.Equal(t, 3, loaded.TotalPages)
	assert.Equal(t, 120, loaded.WordCount)
	assert.Empty(t, loaded.ErrorMessage)

	chapters, err := m.ChapterStorage().GetChaptersByBook(book.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "Full Book", chapters[0].Title)
	assert.Equal(t, 1, chapters[0].ChapterNumber)

	images, err := m.ImageStorage().GetImagesByBook(book.ID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "page-1.png", images[0].Filename)
	assert.Equal(t, "page-2.png", images[1].Filename)
}

func TestCommitExtractionRequiresChapter(t *testing.T) {
	m := newTestManager(t)

	book := &models.Book{ID: "book_test-3", Status: models.BookStatusProcessing}
	require.NoError(t, m.BookStorage().SaveBook(book))

	err := m.CommitExtraction(book, &interfaces.ExtractionResult{})
	assert.Error(t, err)

	// Book must stay PROCESSING when the commit is rejected
	loaded, err := m.BookStorage().GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookStatusProcessing, loaded.Status)
}

func TestDeleteBookData(t *testing.T) {
	m := newTestManager(t)

	book := &models.Book{
		ID:     "book_test-4",
		Title:  "sample",
		Status: models.BookStatusProcessing,
	}
	require.NoError(t, m.BookStorage().SaveBook(book))
	require.NoError(t, m.ProgressStorage().SaveProgress(&models.ProcessingProgress{
		BookID:  book.ID,
		Stage:   models.StageText,
		Percent: 33,
	}))

	book.TotalPages = 1
	require.NoError(t, m.CommitExtraction(book, &interfaces.ExtractionResult{
		Chapter: &models.Chapter{
			ID:            models.ChapterKey(book.ID, 1),
			BookID:        book.ID,
			ChapterNumber: 1,
			Title:         "Full Book",
		},
		Images: []*models.ExtractedImage{
			{ID: models.ImageKey(book.ID, "page-1.png"), BookID: book.ID, Filename: "page-1.png", PageNumber: 1},
		},
	}))

	require.NoError(t, m.DeleteBookData(book.ID))

	_, err := m.BookStorage().GetBook(book.ID)
	assert.Error(t, err)

	chapters, err := m.ChapterStorage().GetChaptersByBook(book.ID)
	require.NoError(t, err)
	assert.Empty(t, chapters)

	images, err := m.ImageStorage().GetImagesByBook(book.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	_, err = m.ProgressStorage().GetProgress(book.ID)
	assert.Error(t, err)
}

func TestProgressUpsert(t *testing.T) {
	m := newTestManager(t)

	p := &models.ProcessingProgress{
		BookID:  "book_test-5",
		Stage:   models.StageText,
		Percent: 33,
		Message: "Extracting text",
	}
	require.NoError(t, m.ProgressStorage().SaveProgress(p))

	p.Stage = models.StageImages
	p.Percent = 66
	require.NoError(t, m.ProgressStorage().SaveProgress(p))

	loaded, err := m.ProgressStorage().GetProgress("book_test-5")
	require.NoError(t, err)
	assert.Equal(t, models.StageImages, loaded.Stage)
	assert.Equal(t, 66, loaded.Percent)
	assert.WithinDuration(t, time.Now(), loaded.UpdatedAt, 5*time.Second)
}

func TestListBooksNewestFirst(t *testing.T) {
	m := newTestManager(t)

	for _, id := range []string{"book_a", "book_b", "book_c"} {
		require.NoError(t, m.BookStorage().SaveBook(&models.Book{
			ID:     id,
			Title:  id,
			Status: models.BookStatusProcessing,
		}))
		time.Sleep(5 * time.Millisecond)
	}

	books, err := m.BookStorage().ListBooks()
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "book_c", books[0].ID)
	assert.Equal(t, "book_a", books[2].ID)
}
