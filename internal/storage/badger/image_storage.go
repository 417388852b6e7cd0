package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
	"github.com/ternarybob/folio/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ImageStorage implements the ImageStorage interface for Badger
type ImageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewImageStorage creates a new ImageStorage instance
func NewImageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ImageStorage {
	return &ImageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ImageStorage) GetImagesByBook(bookID string) ([]*models.ExtractedImage, error) {
	var images []models.ExtractedImage
	if err := s.db.Store().Find(&images, badgerhold.Where("BookID").Eq(bookID).Index("BookID").SortBy("PageNumber")); err != nil {
		return nil, fmt.Errorf("failed to get images for book %s: %w", bookID, err)
	}

	result := make([]*models.ExtractedImage, len(images))
	for i := range images {
		result[i] = &images[i]
	}
	return result, nil
}

func (s *ImageStorage) DeleteImagesByBook(bookID string) error {
	if err := s.db.Store().DeleteMatching(&models.ExtractedImage{}, badgerhold.Where("BookID").Eq(bookID).Index("BookID")); err != nil {
		return fmt.Errorf("failed to delete images for book %s: %w", bookID, err)
	}
	return nil
}
