package pipeline

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
)

const msgInterrupted = "Processing was interrupted before completion"

// Janitor periodically sweeps books stuck in PROCESSING with no active
// pipeline run. Runs orphaned by a restart or crash would otherwise
// poll as PROCESSING forever.
type Janitor struct {
	storage  interfaces.StorageManager
	pipeline interfaces.PipelineService
	maxAge   time.Duration
	cron     *cron.Cron
	logger   arbor.ILogger
}

// NewJanitor creates a janitor that marks books errored once they have
// been PROCESSING for longer than maxAge without an in-flight run.
func NewJanitor(logger arbor.ILogger, storage interfaces.StorageManager, pipeline interfaces.PipelineService, maxAge time.Duration) *Janitor {
	return &Janitor{
		storage:  storage,
		pipeline: pipeline,
		maxAge:   maxAge,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start begins the scheduled sweep
func (j *Janitor) Start(schedule string) error {
	if schedule == "" {
		// Default: every minute
		schedule = "* * * * *"
	}

	_, err := j.cron.AddFunc(schedule, func() {
		if err := j.Sweep(); err != nil {
			j.logger.Error().Err(err).Msg("Stuck-book sweep failed")
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info().
		Str("schedule", schedule).
		Str("max_age", j.maxAge.String()).
		Msg("Stuck-book janitor started")

	return nil
}

// Stop stops the scheduled sweep
func (j *Janitor) Stop() {
	j.cron.Stop()
	j.logger.Info().Msg("Stuck-book janitor stopped")
}

// Sweep marks every orphaned PROCESSING book as errored.
func (j *Janitor) Sweep() error {
	books, err := j.storage.BookStorage().ListBooks()
	if err != nil {
		return fmt.Errorf("failed to list books for sweep: %w", err)
	}

	cutoff := time.Now().Add(-j.maxAge)
	swept := 0

	for _, book := range books {
		if book.Status != models.BookStatusProcessing {
			continue
		}
		if j.pipeline.InFlight(book.ID) {
			continue
		}
		if book.UpdatedAt.After(cutoff) {
			continue
		}

		if err := j.storage.BookStorage().SetBookError(book.ID, msgInterrupted); err != nil {
			j.logger.Error().Str("book_id", book.ID).Err(err).Msg("Failed to sweep stuck book")
			continue
		}
		swept++
	}

	if swept > 0 {
		j.logger.Info().Int("swept", swept).Msg("Marked stuck books as errored")
	}
	return nil
}
