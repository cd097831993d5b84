package parser

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/geotrack/geotrack/internal/models"
)

// Parser defines the interface for position decoders.
type Parser interface {
	// Name returns the unique name of the parser.
	Name() string
	// Extensions returns the file suffixes this parser handles, including the dot.
	Extensions() []string
	// CanParse returns true if this parser can handle the given file.
	CanParse(filePath string) bool
	// Parse decodes the entire file. Problems that only cost positions are
	// reported as warnings on the result; a returned error aborts the run.
	Parse(filePath string) (*models.ParsedTrack, error)
}

// Source reads whole files. The file handle must be closed before ReadFile returns.
type Source interface {
	ReadFile(path string) ([]byte, error)
}

// ZoneResolver maps a coordinate to the timezone observed there.
type ZoneResolver interface {
	Lookup(lat, lon float64) (*time.Location, error)
}

// Options configures the default decoders.
type Options struct {
	// Interval is the minimum spacing between thinned track points. Zero keeps every point.
	Interval time.Duration
	// Shift is added to every sidecar timestamp after zone conversion.
	Shift time.Duration
	// Zones resolves local sidecar timestamps by location. Nil keeps the
	// wall clock and labels it UTC.
	Zones ZoneResolver
}

var (
	// ErrUnsupportedFile is returned when no parser handles a file suffix.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrMalformedDocument is returned for documents that cannot be decoded at all.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrMissingField marks a sidecar lacking a required GPS property.
	ErrMissingField = errors.New("missing field")
	// ErrMalformedValue marks a property whose value cannot be interpreted.
	ErrMalformedValue = errors.New("malformed value")
	// ErrNoCaptureTime marks a sidecar without any recognized timestamp.
	ErrNoCaptureTime = errors.New("no capture timestamp")
)

// hasExtension reports whether path ends in one of exts, ignoring case.
func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
