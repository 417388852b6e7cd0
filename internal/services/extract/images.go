package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

// baseDPI is the PDF default rendering resolution; the configured scale
// factor multiplies it.
const baseDPI = 72.0

// ImageRasterizer renders pages to PNG files using go-fitz.
type ImageRasterizer struct {
	files   interfaces.FileStore
	scale   float64
	minSize int
	logger  arbor.ILogger
}

// NewImageRasterizer creates a rasterizer writing page images into the
// file store at the given scale factor. Renders whose encoded size is
// below minSize bytes are treated as empty pages and skipped.
func NewImageRasterizer(logger arbor.ILogger, files interfaces.FileStore, scale float64, minSize int) interfaces.ImageRasterizer {
	if scale <= 0 {
		scale = 1.5
	}
	return &ImageRasterizer{
		files:   files,
		scale:   scale,
		minSize: minSize,
		logger:  logger,
	}
}

// ExtractImages renders each page of the PDF at path to a PNG under
// images/{bookId}/page-{n}.png. Pages are rendered one at a time to
// bound peak memory; a single page's failure is logged and skipped.
func (r *ImageRasterizer) ExtractImages(ctx context.Context, path, bookID string) ([]models.ExtractedImage, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, NewError(ReasonInvalidOrCorrupt, path, "failed to open PDF for rasterization", err)
	}
	defer doc.Close()

	dpi := r.scale * baseDPI

	var images []models.ExtractedImage
	for pageIdx := 0; pageIdx < doc.NumPage(); pageIdx++ {
		select {
		case <-ctx.Done():
			return images, ctx.Err()
		default:
		}

		pageNum := pageIdx + 1

		img, renderErr := doc.ImageDPI(pageIdx, dpi)
		if renderErr != nil {
			r.logger.Warn().
				Str("book_id", bookID).
				Int("page", pageNum).
				Err(renderErr).
				Msg("Failed to render page, skipping")
			continue
		}

		var buf bytes.Buffer
		if encodeErr := png.Encode(&buf, img); encodeErr != nil {
			r.logger.Warn().
				Str("book_id", bookID).
				Int("page", pageNum).
				Err(encodeErr).
				Msg("Failed to encode page image, skipping")
			continue
		}

		if buf.Len() < r.minSize {
			r.logger.Debug().
				Str("book_id", bookID).
				Int("page", pageNum).
				Int("bytes", buf.Len()).
				Msg("Skipping near-empty page render")
			continue
		}

		filename := fmt.Sprintf("page-%d.png", pageNum)
		storagePath := fmt.Sprintf("images/%s/%s", bookID, filename)
		if _, saveErr := r.files.SaveFile(storagePath, buf.Bytes()); saveErr != nil {
			r.logger.Warn().
				Str("book_id", bookID).
				Int("page", pageNum).
				Err(saveErr).
				Msg("Failed to store page image, skipping")
			continue
		}

		bounds := img.Bounds()
		images = append(images, models.ExtractedImage{
			ID:         models.ImageKey(bookID, filename),
			BookID:     bookID,
			Filename:   filename,
			PageNumber: pageNum,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		})
	}

	return images, nil
}
