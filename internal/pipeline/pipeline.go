// Package pipeline runs a merge: discover inputs, decode each file, merge
// the positions chronologically.
package pipeline

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/geotrack/geotrack/internal/models"
	"github.com/geotrack/geotrack/internal/parser"
)

// Discoverer expands command line inputs into files.
type Discoverer interface {
	Discover(inputs []string, exts []string) ([]models.SourceFile, error)
}

// Options configures a Pipeline.
type Options struct {
	// Logger receives diagnostics. Nil discards them.
	Logger *log.Logger
	// Verbose adds one line per decoded file.
	Verbose bool
}

// Pipeline decodes and merges inputs. It is single use per Run call and
// holds no state between runs.
type Pipeline struct {
	files    Discoverer
	registry *parser.Registry
	logger   *log.Logger
	verbose  bool
}

// New creates a Pipeline.
func New(files Discoverer, registry *parser.Registry, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pipeline{
		files:    files,
		registry: registry,
		logger:   logger,
		verbose:  opts.Verbose,
	}
}

// Run decodes every input and returns the merged track. Warnings are
// logged as they occur and also returned in the stats. Any decode or I/O
// error aborts the run.
func (p *Pipeline) Run(inputs []string) (*models.MergedTrack, *models.RunStats, error) {
	files, err := p.files.Discover(inputs, p.registry.Extensions())
	if err != nil {
		return nil, nil, err
	}
	p.logger.Printf("Found %d files.", len(files))

	stats := &models.RunStats{FilesFound: len(files)}
	results := make([]*models.ParsedTrack, 0, len(files))

	for _, f := range files {
		parsed, err := p.decode(f)
		if err != nil {
			return nil, nil, err
		}
		for _, w := range parsed.Warnings {
			p.logger.Printf("warning: %s", w)
		}
		stats.PositionsDecoded += len(parsed.Positions)
		results = append(results, parsed)
	}
	stats.Warnings = parser.CollectWarnings(results)

	p.logger.Printf("Found %d coordinates.", stats.PositionsDecoded)

	merged := parser.MergePositions(results)
	if p.verbose && merged.TimeRange != nil {
		p.logger.Printf("[Pipeline] time range %s to %s (%s)",
			merged.TimeRange.Start.Format("2006-01-02T15:04:05Z"),
			merged.TimeRange.End.Format("2006-01-02T15:04:05Z"),
			merged.TimeRange.Duration())
	}

	return merged, stats, nil
}

func (p *Pipeline) decode(f models.SourceFile) (*models.ParsedTrack, error) {
	prs, err := p.registry.FindParser(f.Path)
	if err != nil {
		if f.Explicit {
			return nil, fmt.Errorf("%w (supported: %s)", err, strings.Join(p.registry.Extensions(), ", "))
		}
		return nil, err
	}

	parsed, err := prs.Parse(f.Path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.Path, err)
	}

	if p.verbose {
		p.logger.Printf("[Pipeline] %s %s: %d positions", prs.Name(), f.Path, len(parsed.Positions))
	}
	return parsed, nil
}
