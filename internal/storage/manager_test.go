// manager_test.go - Tests for storage layer
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/geotrack/geotrack/internal/testutil"
	"github.com/spf13/afero"
)

func createTestStore(t *testing.T, files map[string]string) *LocalStore {
	t.Helper()
	return NewLocalStore(testutil.NewMemFS(t, files))
}

func TestNewLocalStore(t *testing.T) {
	t.Run("defaults to the OS filesystem", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.gpx")
		if err := os.WriteFile(path, []byte("on disk"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		data, err := NewLocalStore(nil).ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "on disk" {
			t.Errorf("Expected 'on disk', got '%s'", data)
		}
	})

	t.Run("uses the given filesystem", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		store := NewLocalStore(fs)
		w, err := store.Create("/mem.gpx")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		w.Close()
		if ok, _ := afero.Exists(fs, "/mem.gpx"); !ok {
			t.Error("Expected the file to be created on the given filesystem")
		}
	})
}

func TestLocalStore_ReadFile(t *testing.T) {
	store := createTestStore(t, map[string]string{"/tracks/a.gpx": "<gpx/>"})

	t.Run("reads whole file", func(t *testing.T) {
		data, err := store.ReadFile("/tracks/a.gpx")
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "<gpx/>" {
			t.Errorf("Expected content '<gpx/>', got '%s'", data)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := store.ReadFile("/tracks/missing.gpx")
		if err == nil {
			t.Fatal("Expected error for missing file")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestLocalStore_Create(t *testing.T) {
	store := createTestStore(t, nil)

	w, err := store.Create("/out/nested/merged.gpx")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := io.WriteString(w, "merged"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := store.ReadFile("/out/nested/merged.gpx")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "merged" {
		t.Errorf("Expected 'merged', got '%s'", data)
	}

	t.Run("truncates existing file", func(t *testing.T) {
		w, err := store.Create("/out/nested/merged.gpx")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		io.WriteString(w, "x")
		w.Close()

		data, _ := store.ReadFile("/out/nested/merged.gpx")
		if string(data) != "x" {
			t.Errorf("Expected 'x', got '%s'", data)
		}
	})
}

func TestLocalStore_Stat(t *testing.T) {
	store := createTestStore(t, map[string]string{"/photos/img.xmp": "<x/>"})

	info, err := store.Stat("/photos")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected /photos to be a directory")
	}

	if _, err := store.Stat("/nowhere"); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestLocalStore_Discover(t *testing.T) {
	exts := []string{".gpx", ".xmp"}
	files := map[string]string{
		"/data/day1/walk.gpx":       "",
		"/data/day1/IMG_0001.XMP":   "",
		"/data/day1/IMG_0001.jpg":   "",
		"/data/day2/deep/ride.Gpx":  "",
		"/data/day2/notes.txt":      "",
		"/other/IMG_0002.xmp":       "",
		"/other/readme.md":          "",
		"/data/day2/deep/.hidden.x": "",
	}

	paths := func(t *testing.T, inputs ...string) []string {
		t.Helper()
		store := createTestStore(t, files)
		found, err := store.Discover(inputs, exts)
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		var out []string
		for _, f := range found {
			out = append(out, f.Path)
		}
		return out
	}

	t.Run("walks directories recursively", func(t *testing.T) {
		got := paths(t, "/data")
		want := []string{
			"/data/day1/IMG_0001.XMP",
			"/data/day1/walk.gpx",
			"/data/day2/deep/ride.Gpx",
		}
		assertPaths(t, want, got)
	})

	t.Run("explicit file accepted regardless of suffix", func(t *testing.T) {
		got := paths(t, "/other/readme.md")
		assertPaths(t, []string{"/other/readme.md"}, got)
	})

	t.Run("duplicates removed", func(t *testing.T) {
		got := paths(t, "/data/day1", "/data/day1/walk.gpx", "/data/day1/")
		want := []string{
			"/data/day1/IMG_0001.XMP",
			"/data/day1/walk.gpx",
		}
		assertPaths(t, want, got)
	})

	t.Run("mixed files and directories", func(t *testing.T) {
		got := paths(t, "/other", "/data/day2")
		want := []string{
			"/data/day2/deep/ride.Gpx",
			"/other/IMG_0002.xmp",
		}
		assertPaths(t, want, got)
	})

	t.Run("explicit files are marked", func(t *testing.T) {
		store := createTestStore(t, files)
		found, err := store.Discover([]string{"/data/day1", "/other/IMG_0002.xmp"}, exts)
		if err != nil {
			t.Fatalf("Discover failed: %v", err)
		}
		for _, f := range found {
			want := f.Path == "/other/IMG_0002.xmp"
			if f.Explicit != want {
				t.Errorf("%s: expected Explicit=%v", f.Path, want)
			}
		}
	})

	t.Run("missing input", func(t *testing.T) {
		store := createTestStore(t, files)
		_, err := store.Discover([]string{"/data", "/missing"}, exts)
		if err == nil {
			t.Fatal("Expected error for missing input")
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Expected os.ErrNotExist, got %v", err)
		}
	})
}

func TestLocalStore_DiscoverOnDisk(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, name := range []string{filepath.Join(dir, "a.gpx"), filepath.Join(sub, "b.xmp"), filepath.Join(sub, "c.jpg")} {
		if err := os.WriteFile(name, nil, 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	found, err := NewLocalStore(nil).Discover([]string{dir}, []string{".gpx", ".xmp"})
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(found))
	}
	if found[0].Path != filepath.Join(dir, "a.gpx") {
		t.Errorf("Expected a.gpx first, got %s", found[0].Path)
	}
}

func assertPaths(t *testing.T, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("Expected %d paths %v, got %d %v", len(want), want, len(got), got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("Path %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
