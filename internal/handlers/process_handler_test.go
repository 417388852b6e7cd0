package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/folio/internal/models"
	"github.com/ternarybob/folio/internal/services/pipeline"
)

func TestTriggerHandlerAccepts(t *testing.T) {
	env := newHandlerEnv(t)

	book := &models.Book{ID: "book_go", Title: "T", Status: models.BookStatusProcessing}
	require.NoError(t, env.storage.BookStorage().SaveBook(book))

	rec := httptest.NewRecorder()
	env.process.TriggerHandler(rec, httptest.NewRequest("POST", "/api/process/book_go", nil), book.ID)

	require.Equal(t, http.StatusAccepted, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, true, payload["accepted"])
	assert.Equal(t, "book_go", payload["bookId"])
	assert.Equal(t, []string{"book_go"}, env.pipeline.triggered)
}

func TestTriggerHandlerUnknownBook(t *testing.T) {
	env := newHandlerEnv(t)

	rec := httptest.NewRecorder()
	env.process.TriggerHandler(rec, httptest.NewRequest("POST", "/api/process/book_none", nil), "book_none")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, env.pipeline.triggered)
}

func TestTriggerHandlerConflictWhenInFlight(t *testing.T) {
	env := newHandlerEnv(t)

	book := &models.Book{ID: "book_busy2", Title: "T", Status: models.BookStatusProcessing}
	require.NoError(t, env.storage.BookStorage().SaveBook(book))
	env.pipeline.err = pipeline.ErrAlreadyProcessing

	rec := httptest.NewRecorder()
	env.process.TriggerHandler(rec, httptest.NewRequest("POST", "/api/process/book_busy2", nil), book.ID)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
