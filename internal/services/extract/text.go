// Package extract implements the PDF extraction stages: plain text,
// scanned-document detection, table detection from positioned text
// fragments, and page rasterization.
package extract

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
)

// TextExtractor parses PDFs into plain text using ledongthuc/pdf.
type TextExtractor struct {
	maxSize int64
	logger  arbor.ILogger
}

// NewTextExtractor creates a text extractor with the given file size cap.
func NewTextExtractor(logger arbor.ILogger, maxSize int64) interfaces.TextExtractor {
	return &TextExtractor{
		maxSize: maxSize,
		logger:  logger,
	}
}

// ExtractText parses the PDF at path into per-page text joined in page
// order, the declared page count, and the document info dictionary.
func (e *TextExtractor) ExtractText(ctx context.Context, path string) (result *interfaces.TextResult, err error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		return nil, NewError(ReasonFileNotFound, path, fmt.Sprintf("PDF file not found at path: %s", path), statErr)
	}
	if e.maxSize > 0 && info.Size() > e.maxSize {
		return nil, NewError(ReasonTooLarge, path,
			fmt.Sprintf("PDF exceeds maximum size of %d bytes", e.maxSize), nil)
	}

	// The parser panics on some malformed inputs; a corrupt upload must
	// surface as an error, not kill the process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Str("path", path).Str("panic", fmt.Sprintf("%v", r)).Msg("PDF parser panicked")
			result = nil
			err = NewError(ReasonInvalidOrCorrupt, path, "failed to parse PDF", fmt.Errorf("parser panic: %v", r))
		}
	}()

	f, reader, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, NewError(ReasonInvalidOrCorrupt, path, "failed to parse PDF", openErr)
	}
	defer f.Close()

	pageCount := reader.NumPage()

	var pages []string
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			e.logger.Warn().
				Str("path", path).
				Int("page", pageNum).
				Err(pageErr).
				Msg("Failed to extract text from page, skipping")
			continue
		}
		pages = append(pages, text)
	}

	return &interfaces.TextResult{
		Text:      strings.Join(pages, "\n"),
		PageCount: pageCount,
		Info:      readInfoDict(reader),
	}, nil
}

// readInfoDict pulls string entries from the document info dictionary.
func readInfoDict(reader *pdf.Reader) map[string]string {
	info := map[string]string{}

	dict := reader.Trailer().Key("Info")
	if dict.IsNull() {
		return info
	}

	for _, key := range dict.Keys() {
		value := dict.Key(key)
		if value.Kind() == pdf.String {
			if s := strings.TrimSpace(value.Text()); s != "" {
				info[key] = s
			}
		}
	}
	return info
}
