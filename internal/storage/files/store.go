// Package files provides local-disk blob storage for uploaded PDFs and
// rasterized page images. All paths handed to the store are relative to
// the configured root, e.g. pdfs/{bookId}/{filename}.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/common"
	"github.com/ternarybob/folio/internal/interfaces"
)

// Store implements the FileStore interface on the local filesystem
type Store struct {
	root   string
	logger arbor.ILogger
}

// NewStore creates a file store rooted at the configured storage path
func NewStore(logger arbor.ILogger, config *common.FilesConfig) (interfaces.FileStore, error) {
	root, err := filepath.Abs(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	logger.Debug().Str("root", root).Msg("File store initialized")

	return &Store{
		root:   root,
		logger: logger,
	}, nil
}

// resolve maps a relative storage path to an absolute path, refusing
// anything that escapes the store root.
func (s *Store) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage path: %s", path)
	}
	return filepath.Join(s.root, cleaned), nil
}

func (s *Store) SaveFile(path string, data []byte) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return path, nil
}

func (s *Store) GetFile(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

func (s *Store) DeleteFile(path string) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

func (s *Store) FileExists(path string) bool {
	full, err := s.resolve(path)
	if err != nil {
		return false
	}

	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

func (s *Store) GetFileSize(path string) (int64, error) {
	full, err := s.resolve(path)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return 0, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return info.Size(), nil
}

func (s *Store) ListFiles(dir string) ([]string, error) {
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// GetFilePath resolves a relative storage path to an absolute path.
// The file does not have to exist.
func (s *Store) GetFilePath(path string) string {
	full, err := s.resolve(path)
	if err != nil {
		return filepath.Join(s.root, filepath.Clean(path))
	}
	return full
}

// DeleteBookFiles removes the pdfs/{bookId} and images/{bookId}
// directories for a book. Missing directories are not an error.
func (s *Store) DeleteBookFiles(bookID string) error {
	for _, dir := range []string{
		filepath.Join("pdfs", bookID),
		filepath.Join("images", bookID),
	} {
		full, err := s.resolve(dir)
		if err != nil {
			return err
		}
		if err := os.RemoveAll(full); err != nil {
			return fmt.Errorf("failed to delete %s: %w", dir, err)
		}
	}

	s.logger.Debug().Str("book_id", bookID).Msg("Book files deleted")
	return nil
}
