package models

import "fmt"

// DecodeWarning represents a non-fatal problem found while decoding a file.
// The file contributes fewer positions (possibly none) but the run continues.
type DecodeWarning struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

func (w DecodeWarning) String() string {
	return fmt.Sprintf("%s: %s", w.File, w.Reason)
}

// RunStats summarizes a merge run.
type RunStats struct {
	FilesFound       int             `json:"filesFound"`
	PositionsDecoded int             `json:"positionsDecoded"`
	Warnings         []DecodeWarning `json:"warnings,omitempty"`
}
