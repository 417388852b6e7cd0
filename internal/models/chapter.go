package models

import (
	"fmt"
	"time"
)

// Chapter is the single extracted-content unit produced per book.
// Chapter splitting is out of scope: exactly zero or one chapter exists
// per book at any time, numbered 1 and titled "Full Book". It is created
// atomically with the book's READY transition and never exists for a
// book that ended in ERROR.
type Chapter struct {
	ID            string    `json:"id" badgerhold:"key"` // {bookId}:{chapterNumber}
	BookID        string    `json:"book_id" badgerhold:"index"`
	ChapterNumber int       `json:"chapter_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content"` // extracted text plus [TABLE:i]/[IMAGE:name] markers
	WordCount     int       `json:"word_count"`
	StartPage     int       `json:"start_page"`
	EndPage       int       `json:"end_page"`
	CreatedAt     time.Time `json:"created_at"`
}

// ChapterKey builds the storage key for a chapter of a book.
func ChapterKey(bookID string, chapterNumber int) string {
	return fmt.Sprintf("%s:%d", bookID, chapterNumber)
}
