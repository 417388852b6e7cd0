package models

import "time"

// Processing stages reported by the extraction pipeline. Percentages
// match the stage boundaries the status endpoint exposes to pollers.
const (
	StageText    = "text"
	StageImages  = "images"
	StageTables  = "tables"
	StagePersist = "persist"
)

// ProcessingProgress is the per-book progress record written at each
// pipeline stage boundary and read by the status endpoint. It replaces
// the coarse status-derived estimate whenever a run is in flight.
type ProcessingProgress struct {
	BookID    string    `json:"book_id" badgerhold:"key"`
	Stage     string    `json:"stage"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressForStatus is the fallback progress estimate derived from
// status alone, used when no progress record exists for a book.
func ProgressForStatus(status BookStatus) int {
	switch status {
	case BookStatusProcessing:
		return 50
	case BookStatusReady:
		return 100
	default:
		return 0
	}
}
