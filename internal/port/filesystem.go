package port

import "time"

// CacheFile describes one file directly under the cache root.
type CacheFile struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// FileSystem defines the interface for cache filesystem operations
type FileSystem interface {
	// RootDir returns the cache root directory
	RootDir() string

	// TempArchivePath returns a unique path under the cache root for an
	// intermediate archive download
	TempArchivePath() string

	// EnsureParent creates the parent directory of filePath if absent
	EnsureParent(filePath string) error

	// EnsureDir creates dir (including parents) if absent
	EnsureDir(dir string) error

	// FileExists checks if a file exists at path
	FileExists(path string) bool

	// FileSize returns the size of the file at path
	FileSize(path string) (int64, error)

	// Delete removes a file; a missing file is not an error
	Delete(path string) error

	// DirIsEmpty reports whether dir contains no entries
	DirIsEmpty(dir string) (bool, error)

	// ListCacheFiles returns the files directly under the cache root,
	// not recursing into subdirectories
	ListCacheFiles() ([]CacheFile, error)
}
