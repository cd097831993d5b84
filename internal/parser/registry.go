package parser

import "fmt"

// Registry holds the available parsers and dispatches files to them by suffix.
type Registry struct {
	parsers []Parser
}

// NewRegistry creates a registry with the given parsers.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// NewDefaultRegistry returns the track-log and sidecar parsers reading through src.
func NewDefaultRegistry(src Source, opts Options) *Registry {
	return NewRegistry(
		NewGPXParser(src, opts.Interval),
		NewXMPParser(src, opts.Shift, opts.Zones),
	)
}

// FindParser selects the parser for a file by its suffix.
func (r *Registry) FindParser(filePath string) (Parser, error) {
	for _, p := range r.parsers {
		if p.CanParse(filePath) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filePath)
}

// Extensions lists every suffix handled by a registered parser.
func (r *Registry) Extensions() []string {
	var exts []string
	for _, p := range r.parsers {
		exts = append(exts, p.Extensions()...)
	}
	return exts
}
