package interfaces

// FileStore is the blob storage abstraction backing uploaded PDFs and
// rasterized page images. Paths are relative to the store root, e.g.
// pdfs/{bookId}/{filename} and images/{bookId}/page-{n}.png.
type FileStore interface {
	SaveFile(path string, data []byte) (string, error)
	GetFile(path string) ([]byte, error)
	DeleteFile(path string) error
	FileExists(path string) bool
	GetFileSize(path string) (int64, error)
	ListFiles(dir string) ([]string, error)
	// GetFilePath resolves a relative storage path to an absolute path.
	GetFilePath(path string) string
	// DeleteBookFiles removes every stored file belonging to a book.
	DeleteBookFiles(bookID string) error
}
