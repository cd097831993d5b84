package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Store defines the interface for file access used by a merge run.
type Store interface {
	ReadFile(path string) ([]byte, error)
	Create(path string) (io.WriteCloser, error)
	Stat(path string) (os.FileInfo, error)
}

// LocalStore implements Store on top of an afero filesystem.
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore creates a new LocalStore. A nil fs means the OS filesystem.
func NewLocalStore(fs afero.Fs) *LocalStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalStore{fs: fs}
}

// ReadFile reads a whole file. The handle is closed before returning,
// whether or not the read succeeded.
func (s *LocalStore) ReadFile(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	return data, nil
}

// Create creates (or truncates) a file for writing, making parent
// directories as needed.
func (s *LocalStore) Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file %s: %w", path, err)
	}

	return f, nil
}

// Stat returns file info for path.
func (s *LocalStore) Stat(path string) (os.FileInfo, error) {
	return s.fs.Stat(path)
}
