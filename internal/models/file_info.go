package models

// SourceFile represents one input selected for decoding.
type SourceFile struct {
	Path     string `json:"path"`
	Explicit bool   `json:"explicit"` // named on the command line rather than found in a directory
}
