package common

import (
	"github.com/google/uuid"
)

// NewBookID generates a unique book ID with the "book_" prefix
// Format: book_<uuid>
func NewBookID() string {
	return "book_" + uuid.New().String()
}
