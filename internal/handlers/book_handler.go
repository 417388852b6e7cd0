package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

var pdfMagic = []byte("%PDF")

// BookHandler handles book upload, listing, details, status and deletion
type BookHandler struct {
	storage     interfaces.StorageManager
	files       interfaces.FileStore
	pipeline    interfaces.PipelineService
	maxFileSize int64
	logger      arbor.ILogger
}

// NewBookHandler creates a new book handler
func NewBookHandler(storage interfaces.StorageManager, files interfaces.FileStore, pipeline interfaces.PipelineService, maxFileSize int64, logger arbor.ILogger) *BookHandler {
	return &BookHandler{
		storage:     storage,
		files:       files,
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// UploadHandler accepts a PDF upload, stores the file, creates the book
// record in PROCESSING state and triggers extraction.
// POST /api/upload (multipart form, field "file")
func (h *BookHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	// Slack covers multipart framing overhead; the real size checks are
	// against the decoded file below
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+(10<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Size > h.maxFileSize {
		WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %dMB limit", h.maxFileSize/(1024*1024)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to read upload body")
		WriteError(w, http.StatusBadRequest, "Failed to read file")
		return
	}
	if int64(len(data)) > h.maxFileSize {
		WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %dMB limit", h.maxFileSize/(1024*1024)))
		return
	}

	if len(data) < len(pdfMagic) || !bytes.Equal(data[:len(pdfMagic)], pdfMagic) {
		WriteError(w, http.StatusBadRequest, "Invalid PDF file")
		return
	}

	// Structural validation beyond the magic bytes
	if err := api.Validate(bytes.NewReader(data), model.NewDefaultConfiguration()); err != nil {
		h.logger.Warn().Str("filename", header.Filename).Err(err).Msg("Upload failed PDF validation")
		WriteError(w, http.StatusBadRequest, "Invalid PDF file")
		return
	}

	bookID := common.NewBookID()
	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = "upload.pdf"
	}
	pdfPath := fmt.Sprintf("pdfs/%s/%s", bookID, filename)

	if _, err := h.files.SaveFile(pdfPath, data); err != nil {
		h.logger.Error().Str("path", pdfPath).Err(err).Msg("Failed to store uploaded PDF")
		WriteError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	book := &models.Book{
		ID:      bookID,
		Title:   strings.TrimSuffix(filename, ".pdf"),
		PDFPath: pdfPath,
		Status:  models.BookStatusProcessing,
	}
	if err := h.storage.BookStorage().SaveBook(book); err != nil {
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to create book record")
		h.files.DeleteBookFiles(bookID)
		WriteError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	h.logger.Info().
		Str("book_id", bookID).
		Str("filename", filename).
		Int("bytes", len(data)).
		Msg("Book uploaded")

	if err := h.pipeline.Trigger(bookID); err != nil {
		h.logger.Warn().Str("book_id", bookID).Err(err).Msg("Failed to trigger processing after upload")
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"bookId":  bookID,
	})
}

// ListHandler returns all books, newest first
// GET /api/books
func (h *BookHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	books, err := h.storage.BookStorage().ListBooks()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list books")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch books")
		return
	}

	summaries := make([]map[string]interface{}, len(books))
	for i, book := range books {
		summaries[i] = map[string]interface{}{
			"id":         book.ID,
			"title":      book.Title,
			"author":     book.Author,
			"status":     book.Status,
			"created_at": book.CreatedAt,
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"books": summaries,
	})
}

// loadBook resolves the book for a by-ID handler or writes the error
// response: 404 for an unknown ID, 500 for a storage failure.
func (h *BookHandler) loadBook(w http.ResponseWriter, bookID string) (*models.Book, bool) {
	book, err := h.storage.BookStorage().GetBook(bookID)
	if errors.Is(err, models.ErrBookNotFound) {
		WriteError(w, http.StatusNotFound, "Book not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to load book")
		WriteError(w, http.StatusInternalServerError, "Failed to load book")
		return nil, false
	}
	return book, true
}

// GetHandler returns one book with its chapters and images
// GET /api/books/{id}
func (h *BookHandler) GetHandler(w http.ResponseWriter, r *http.Request, bookID string) {
	book, ok := h.loadBook(w, bookID)
	if !ok {
		return
	}

	chapters, err := h.storage.ChapterStorage().GetChaptersByBook(bookID)
	if err != nil {
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to load chapters")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch book details")
		return
	}

	images, err := h.storage.ImageStorage().GetImagesByBook(bookID)
	if err != nil {
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to load images")
		WriteError(w, http.StatusInternalServerError, "Failed to fetch book details")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"book": map[string]interface{}{
			"id":            book.ID,
			"title":         book.Title,
			"author":        book.Author,
			"pdf_path":      book.PDFPath,
			"total_pages":   book.TotalPages,
			"word_count":    book.WordCount,
			"status":        book.Status,
			"error_message": book.ErrorMessage,
			"created_at":    book.CreatedAt,
			"updated_at":    book.UpdatedAt,
			"chapters":      chapters,
			"images":        images,
		},
	})
}

// StatusHandler returns the processing status for polling clients.
// Progress prefers the persisted per-stage record over the coarse
// status-derived estimate.
// GET /api/books/{id}/status
func (h *BookHandler) StatusHandler(w http.ResponseWriter, r *http.Request, bookID string) {
	book, ok := h.loadBook(w, bookID)
	if !ok {
		return
	}

	progress := models.ProgressForStatus(book.Status)
	if book.Status == models.BookStatusProcessing {
		if record, progressErr := h.storage.ProgressStorage().GetProgress(bookID); progressErr == nil {
			progress = record.Percent
		}
	}

	var errMsg interface{}
	if book.ErrorMessage != "" {
		errMsg = book.ErrorMessage
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":       book.ID,
		"status":   book.Status,
		"error":    errMsg,
		"progress": progress,
		"metadata": map[string]interface{}{
			"totalPages": book.TotalPages,
			"wordCount":  book.WordCount,
			"title":      book.Title,
			"author":     book.Author,
		},
	})
}

// DeleteHandler removes a book, its extracted records and stored files
// DELETE /api/books/{id}
func (h *BookHandler) DeleteHandler(w http.ResponseWriter, r *http.Request, bookID string) {
	book, ok := h.loadBook(w, bookID)
	if !ok {
		return
	}

	if h.pipeline.InFlight(bookID) {
		WriteError(w, http.StatusConflict, "Book is currently being processed")
		return
	}

	// Files first: if this partially fails the records still point at
	// whatever remains
	if err := h.files.DeleteBookFiles(bookID); err != nil {
		h.logger.Warn().Str("book_id", bookID).Err(err).Msg("Storage deletion warning")
	}

	if err := h.storage.DeleteBookData(bookID); err != nil {
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to delete book records")
		WriteError(w, http.StatusInternalServerError, "Failed to delete book")
		return
	}

	h.logger.Info().
		Str("book_id", bookID).
		Str("title", book.Title).
		Msg("Book deleted")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Book deleted successfully",
	})
}
