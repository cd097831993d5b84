package models

import "time"

// ParsedTrack represents the result of decoding one input file.
type ParsedTrack struct {
	Positions []Position      `json:"positions"`
	Warnings  []DecodeWarning `json:"warnings,omitempty"`
}

// MergedTrack is the chronologically ordered union of all decoded positions.
type MergedTrack struct {
	Positions []Position `json:"positions"`
	TimeRange *TimeRange `json:"timeRange,omitempty"`
}

// TimeRange represents a time window.
type TimeRange struct {
	Start time.Time `json:"start" msgpack:"start"`
	End   time.Time `json:"end" msgpack:"end"`
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// NewParsedTrack creates a new empty ParsedTrack.
func NewParsedTrack() *ParsedTrack {
	return &ParsedTrack{
		Positions: make([]Position, 0),
		Warnings:  make([]DecodeWarning, 0),
	}
}

// Warn records a non-fatal problem for file.
func (t *ParsedTrack) Warn(file, reason string) {
	t.Warnings = append(t.Warnings, DecodeWarning{File: file, Reason: reason})
}
