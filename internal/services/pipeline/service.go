// Package pipeline orchestrates the per-book extraction run: text,
// scanned-document check, best-effort tables and images, content
// assembly and the atomic READY commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/extract"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyProcessing is returned by Trigger when a run is already in
// flight for the book.
var ErrAlreadyProcessing = errors.New("processing already in flight for this book")

const (
	msgScanned      = "PDF appears to be scanned or contains no extractable text"
	msgUnknownError = "Unknown error during processing"
)

// Service runs the extraction pipeline. It is the only component that
// mutates Book, Chapter and ExtractedImage state.
type Service struct {
	storage interfaces.StorageManager
	files   interfaces.FileStore
	text    interfaces.TextExtractor
	tables  interfaces.TableDetector
	images  interfaces.ImageRasterizer
	timeout time.Duration
	logger  arbor.ILogger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates the pipeline service.
func NewService(
	logger arbor.ILogger,
	storage interfaces.StorageManager,
	files interfaces.FileStore,
	text interfaces.TextExtractor,
	tables interfaces.TableDetector,
	images interfaces.ImageRasterizer,
	timeout time.Duration,
) interfaces.PipelineService {
	return &Service{
		storage:  storage,
		files:    files,
		text:     text,
		tables:   tables,
		images:   images,
		timeout:  timeout,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}
}

// Trigger dispatches an asynchronous run for the book and returns
// immediately. A second trigger while a run is in flight is rejected.
func (s *Service) Trigger(bookID string) error {
	s.mu.Lock()
	if _, active := s.inFlight[bookID]; active {
		s.mu.Unlock()
		return ErrAlreadyProcessing
	}
	s.inFlight[bookID] = struct{}{}
	s.mu.Unlock()

	common.SafeGo(s.logger, "pipeline:"+bookID, func() {
		defer s.clearInFlight(bookID)

		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		if err := s.run(ctx, bookID); err != nil {
			s.logger.Error().Str("book_id", bookID).Err(err).Msg("Processing run failed")
		}
	})

	return nil
}

// Process runs the pipeline synchronously. Used by tests and by
// callers that want to observe the terminal state directly.
func (s *Service) Process(ctx context.Context, bookID string) error {
	s.mu.Lock()
	if _, active := s.inFlight[bookID]; active {
		s.mu.Unlock()
		return ErrAlreadyProcessing
	}
	s.inFlight[bookID] = struct{}{}
	s.mu.Unlock()
	defer s.clearInFlight(bookID)

	return s.run(ctx, bookID)
}

// InFlight reports whether a run is currently active for the book.
func (s *Service) InFlight(bookID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.inFlight[bookID]
	return active
}

func (s *Service) clearInFlight(bookID string) {
	s.mu.Lock()
	delete(s.inFlight, bookID)
	s.mu.Unlock()
}

// run executes one pipeline attempt to a terminal book state. Fatal
// failures are converted into a persisted ERROR status; they are never
// surfaced to the trigger, which already responded.
func (s *Service) run(ctx context.Context, bookID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("book_id", bookID).Str("panic", fmt.Sprintf("%v", r)).Msg("Pipeline panicked")
			s.markError(bookID, msgUnknownError)
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	book, loadErr := s.storage.BookStorage().GetBook(bookID)
	if errors.Is(loadErr, models.ErrBookNotFound) {
		// Racing with deletion is benign: nothing to update, nothing to report
		s.logger.Warn().Str("book_id", bookID).Msg("Book not found at pipeline start, skipping")
		return nil
	}
	if loadErr != nil {
		s.markError(bookID, msgUnknownError)
		return fmt.Errorf("failed to load book %s: %w", bookID, loadErr)
	}

	s.logger.Info().
		Str("book_id", bookID).
		Str("title", book.Title).
		Str("pdf_path", book.PDFPath).
		Msg("Processing started")

	if !s.files.FileExists(book.PDFPath) {
		return s.fail(bookID, fmt.Sprintf("PDF file not found at path: %s", book.PDFPath))
	}

	pdfPath := s.files.GetFilePath(book.PDFPath)

	// Stage 1: text extraction, mandatory
	s.reportProgress(bookID, models.StageText, 33, "Extracting text...")

	textResult, textErr := s.text.ExtractText(ctx, pdfPath)
	if textErr != nil {
		return s.fail(bookID, fatalMessage(textErr, s.timeout))
	}

	if extract.IsScanned(textResult.Text) {
		s.logger.Warn().Str("book_id", bookID).Msg("PDF classified as scanned")
		return s.fail(bookID, msgScanned)
	}

	wordCount := extract.WordCount(textResult.Text)

	if book.Author == "" {
		book.Author = textResult.Info["Author"]
	}

	s.logger.Info().
		Str("book_id", bookID).
		Int("pages", textResult.PageCount).
		Int("words", wordCount).
		Msg("Text extracted")

	// Stage 2: tables and images, best-effort and independent
	s.reportProgress(bookID, models.StageImages, 66, "Extracting images...")

	var (
		tables []models.ExtractedTable
		images []models.ExtractedImage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detected, tableErr := s.tables.DetectTables(gctx, pdfPath)
		if tableErr != nil {
			if isCancellation(tableErr) {
				return tableErr
			}
			s.logger.Warn().Str("book_id", bookID).Err(tableErr).Msg("Table detection failed, continuing without tables")
			return nil
		}
		tables = detected
		return nil
	})
	g.Go(func() error {
		rendered, imageErr := s.images.ExtractImages(gctx, pdfPath, bookID)
		if imageErr != nil {
			if isCancellation(imageErr) {
				return imageErr
			}
			s.logger.Warn().Str("book_id", bookID).Err(imageErr).Msg("Image extraction failed, continuing without images")
			return nil
		}
		images = rendered
		return nil
	})
	// Goroutines swallow their own failures; cancellation is fatal so a
	// run past its deadline ends ERROR instead of committing READY
	if waitErr := g.Wait(); waitErr != nil {
		return s.fail(bookID, fatalMessage(waitErr, s.timeout))
	}

	s.reportProgress(bookID, models.StageTables, 100, "Extracting tables...")

	s.logger.Info().
		Str("book_id", bookID).
		Int("tables", len(tables)).
		Int("images", len(images)).
		Msg("Auxiliary extraction complete")

	// Persist: chapter create + image inserts + READY transition, atomic
	content := AssembleContent(textResult.Text, tables, images)

	book.TotalPages = textResult.PageCount
	book.WordCount = wordCount

	imageRows := make([]*models.ExtractedImage, len(images))
	for i := range images {
		imageRows[i] = &images[i]
	}

	result := &interfaces.ExtractionResult{
		Chapter: &models.Chapter{
			ID:            models.ChapterKey(bookID, 1),
			BookID:        bookID,
			ChapterNumber: 1,
			Title:         "Full Book",
			Content:       content,
			WordCount:     wordCount,
			StartPage:     1,
			EndPage:       textResult.PageCount,
		},
		Images: imageRows,
	}

	if commitErr := s.storage.CommitExtraction(book, result); commitErr != nil {
		return s.fail(bookID, commitErr.Error())
	}

	s.clearProgress(bookID)

	s.logger.Info().
		Str("book_id", bookID).
		Int("pages", textResult.PageCount).
		Int("words", wordCount).
		Int("images", len(images)).
		Int("tables", len(tables)).
		Msg("Processing complete")
	return nil
}

// fail records the fatal message on the book and reports the terminal
// state to the caller.
func (s *Service) fail(bookID, message string) error {
	s.markError(bookID, message)
	return errors.New(message)
}

// markError writes the ERROR terminal state. A failure to even record
// the error is logged but not retried.
func (s *Service) markError(bookID, message string) {
	if message == "" {
		message = msgUnknownError
	}
	if err := s.storage.BookStorage().SetBookError(bookID, message); err != nil {
		s.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to record processing error")
	}
	s.clearProgress(bookID)
}

func (s *Service) reportProgress(bookID, stage string, percent int, message string) {
	err := s.storage.ProgressStorage().SaveProgress(&models.ProcessingProgress{
		BookID:  bookID,
		Stage:   stage,
		Percent: percent,
		Message: message,
	})
	if err != nil {
		s.logger.Warn().Str("book_id", bookID).Err(err).Msg("Failed to persist progress")
	}

	s.logger.Info().
		Str("book_id", bookID).
		Str("stage", stage).
		Int("percent", percent).
		Msg(message)
}

func (s *Service) clearProgress(bookID string) {
	if err := s.storage.ProgressStorage().DeleteProgress(bookID); err != nil {
		s.logger.Warn().Str("book_id", bookID).Err(err).Msg("Failed to clear progress record")
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// fatalMessage maps a stage error to the persisted human-readable
// message, with a dedicated message for pipeline timeouts.
func fatalMessage(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Processing timed out after %s", timeout)
	}
	if err == nil || err.Error() == "" {
		return msgUnknownError
	}
	return err.Error()
}
