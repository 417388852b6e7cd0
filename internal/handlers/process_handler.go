package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/pipeline"
)

// ProcessHandler triggers extraction runs
type ProcessHandler struct {
	storage  interfaces.StorageManager
	pipeline interfaces.PipelineService
	logger   arbor.ILogger
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(storage interfaces.StorageManager, pipelineService interfaces.PipelineService, logger arbor.ILogger) *ProcessHandler {
	return &ProcessHandler{
		storage:  storage,
		pipeline: pipelineService,
		logger:   logger,
	}
}

// TriggerHandler dispatches an asynchronous processing run and returns
// immediately. A run already in flight for the book is a conflict.
// POST /api/process/{bookId}
func (h *ProcessHandler) TriggerHandler(w http.ResponseWriter, r *http.Request, bookID string) {
	if _, err := h.storage.BookStorage().GetBook(bookID); err != nil {
		if errors.Is(err, models.ErrBookNotFound) {
			WriteError(w, http.StatusNotFound, "Book not found")
			return
		}
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to load book")
		WriteError(w, http.StatusInternalServerError, "Failed to load book")
		return
	}

	if err := h.pipeline.Trigger(bookID); err != nil {
		if errors.Is(err, pipeline.ErrAlreadyProcessing) {
			WriteError(w, http.StatusConflict, "Processing already in progress for this book")
			return
		}
		h.logger.Error().Str("book_id", bookID).Err(err).Msg("Failed to trigger processing")
		WriteError(w, http.StatusInternalServerError, "Failed to start processing")
		return
	}

	h.logger.Info().Str("book_id", bookID).Msg("Processing triggered")

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"bookId":   bookID,
	})
}
