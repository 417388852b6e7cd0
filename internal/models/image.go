package models

import (
	"fmt"
	"time"
)

// ExtractedImage is the metadata record for one rasterized page image.
// Zero or more exist per book; image extraction is best-effort, so a
// READY book with no image rows is a valid state.
type ExtractedImage struct {
	ID         string    `json:"id" badgerhold:"key"` // {bookId}:{filename}
	BookID     string    `json:"book_id" badgerhold:"index"`
	Filename   string    `json:"filename"` // page-{n}.png under images/{bookId}/
	PageNumber int       `json:"page_number"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

// ImageKey builds the storage key for an image record.
func ImageKey(bookID, filename string) string {
	return fmt.Sprintf("%s:%s", bookID, filename)
}

// ExtractedTable is a table detected from positioned text fragments.
// Tables are transient: they are folded into Chapter.Content as HTML
// rather than persisted as their own records.
type ExtractedTable struct {
	HTML       string `json:"html"`
	PageNumber int    `json:"page_number"`
	RowCount   int    `json:"row_count"`
	ColCount   int    `json:"col_count"`
}
