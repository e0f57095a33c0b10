package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ducnd58233/dataset-cache/internal/port"
)

// Manager handles cache filesystem operations
type Manager struct {
	rootDir string
}

// Ensure Manager implements port.FileSystem
var _ port.FileSystem = (*Manager)(nil)

// NewManager creates a new filesystem manager rooted at rootDir, creating
// the directory (including parents) if absent.
func NewManager(rootDir string) (*Manager, error) {
	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache root dir: %w", err)
	}

	return &Manager{rootDir: rootDir}, nil
}

// RootDir returns the cache root directory
func (m *Manager) RootDir() string {
	return m.rootDir
}

// TempArchivePath returns a unique path under the cache root for an
// intermediate archive download. A random token keeps concurrent pipeline
// runs from colliding on the same path.
func (m *Manager) TempArchivePath() string {
	return filepath.Join(m.rootDir, fmt.Sprintf("dl-%s.zip", uuid.NewString()))
}

// EnsureParent creates the parent directory of filePath if absent
func (m *Manager) EnsureParent(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0755)
}

// EnsureDir creates dir (including parents) if absent
func (m *Manager) EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// FileExists checks if a file exists at path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileSize returns the size of the file at path
func (m *Manager) FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Delete removes a file. A file that is already gone is not an error; the
// janitor and the pipeline race on cache deletions by design.
func (m *Manager) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// DirIsEmpty reports whether dir contains no entries
func (m *Manager) DirIsEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// ListCacheFiles returns the files directly under the cache root. It does
// not recurse into subdirectories.
func (m *Manager) ListCacheFiles() ([]port.CacheFile, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []port.CacheFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, port.CacheFile{
			Path:    filepath.Join(m.rootDir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}
