package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/geotrack/geotrack/internal/models"
	"github.com/spf13/afero"
)

// Discover expands inputs into the set of files to decode.
//
// A regular file is taken as given, whatever its suffix. A directory is
// walked recursively and only files ending in one of exts (case-insensitive)
// are kept. Duplicates are removed. The result is sorted by path, but
// callers must not derive merge order from it.
func (s *LocalStore) Discover(inputs []string, exts []string) ([]models.SourceFile, error) {
	found := make(map[string]models.SourceFile)

	for _, input := range inputs {
		info, err := s.fs.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("reading input %s: %w", input, err)
		}

		if !info.IsDir() {
			path := filepath.Clean(input)
			found[path] = models.SourceFile{Path: path, Explicit: true}
			continue
		}

		err = afero.Walk(s.fs, input, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() || !matchesExtension(path, exts) {
				return nil
			}
			path = filepath.Clean(path)
			if _, ok := found[path]; !ok {
				found[path] = models.SourceFile{Path: path}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", input, err)
		}
	}

	files := make([]models.SourceFile, 0, len(found))
	for _, f := range found {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

func matchesExtension(path string, exts []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}
