package models

import (
	"errors"
	"time"
)

// ErrBookNotFound reports a lookup for a book ID with no stored record.
// Callers distinguish it from storage failures with errors.Is.
var ErrBookNotFound = errors.New("book not found")

// BookStatus is the lifecycle state of an uploaded book.
// A book starts PROCESSING at upload time and transitions exactly once
// per processing attempt to READY or ERROR.
type BookStatus string

const (
	BookStatusProcessing BookStatus = "PROCESSING"
	BookStatusReady      BookStatus = "READY"
	BookStatusError      BookStatus = "ERROR"
)

// Book is the identity and lifecycle record for one uploaded PDF.
// TotalPages and WordCount are zero until extraction completes and are
// only meaningful when Status is READY.
type Book struct {
	ID           string     `json:"id" badgerhold:"key"`
	Title        string     `json:"title"`
	Author       string     `json:"author,omitempty"`
	PDFPath      string     `json:"pdf_path"` // relative storage path: pdfs/{bookId}/{filename}
	TotalPages   int        `json:"total_pages"`
	WordCount    int        `json:"word_count"`
	Status       BookStatus `json:"status" badgerhold:"index"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsTerminal reports whether the book has reached a terminal processing state.
func (s BookStatus) IsTerminal() bool {
	return s == BookStatusReady || s == BookStatusError
}
