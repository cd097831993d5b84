// Package models contains domain types for geotrack.
package models

import "time"

// Position is a single timestamped coordinate.
// Timestamp is always UTC once a decoder has produced the value.
type Position struct {
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Latitude  float64   `json:"latitude" msgpack:"latitude"`
	Longitude float64   `json:"longitude" msgpack:"longitude"`
	Altitude  *float64  `json:"altitude,omitempty" msgpack:"altitude,omitempty"` // meters, nil when unknown
	Source    string    `json:"source,omitempty" msgpack:"source,omitempty"`     // file that produced the position
}

// HasAltitude reports whether the altitude is known.
func (p Position) HasAltitude() bool {
	return p.Altitude != nil
}

// Float64 returns a pointer to v, for building positions with a known altitude.
func Float64(v float64) *float64 {
	return &v
}
