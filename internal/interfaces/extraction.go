package interfaces

import (
	"context"

	"github.com/ternarybob/folio/internal/models"
)

// TextResult is the output of the mandatory text extraction stage.
type TextResult struct {
	Text      string            // per-page text concatenated in page order
	PageCount int               // declared page count of the document
	Info      map[string]string // document metadata (Title, Author, Producer...) when present
}

// TextExtractor parses a stored PDF into plain text, page count and
// document metadata. Failures carry a reason code and the offending
// path for diagnostics.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (*TextResult, error)
}

// TableDetector finds tabular regions from positioned text fragments
// and renders them as HTML. A single page's failure never aborts
// detection for other pages.
type TableDetector interface {
	DetectTables(ctx context.Context, path string) ([]models.ExtractedTable, error)
}

// ImageRasterizer renders each page to a PNG under images/{bookId}/ and
// returns the metadata rows. Per-page failures are logged and skipped.
type ImageRasterizer interface {
	ExtractImages(ctx context.Context, path, bookID string) ([]models.ExtractedImage, error)
}

// PipelineService runs the extraction pipeline for a book.
type PipelineService interface {
	// Trigger dispatches an asynchronous processing run and returns
	// immediately. It refuses a second concurrent run for the same book.
	Trigger(bookID string) error

	// Process runs the pipeline synchronously to a terminal book state.
	Process(ctx context.Context, bookID string) error

	// InFlight reports whether a run is currently active for the book.
	InFlight(bookID string) bool
}
