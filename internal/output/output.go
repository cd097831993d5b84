// Package output serializes a merged track.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/geotrack/geotrack/internal/models"
	"github.com/tkrajina/gpxgo/gpx"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the document type written by Write.
type Format string

const (
	FormatGPX     Format = "gpx"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// DefaultCreator is written to the GPX creator attribute.
const DefaultCreator = "geotrack"

// Options configures Write.
type Options struct {
	Format  Format
	Creator string
	Indent  bool
}

// Document is the JSON and MessagePack form of a merged track.
type Document struct {
	Creator   string            `json:"creator" msgpack:"creator"`
	TimeRange *models.TimeRange `json:"timeRange,omitempty" msgpack:"timeRange,omitempty"`
	Positions []models.Position `json:"positions" msgpack:"positions"`
}

// Write renders track to w.
func Write(w io.Writer, track *models.MergedTrack, opts Options) error {
	if opts.Creator == "" {
		opts.Creator = DefaultCreator
	}

	switch opts.Format {
	case FormatGPX, "":
		return writeGPX(w, track, opts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		if opts.Indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(newDocument(track, opts.Creator))
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(newDocument(track, opts.Creator))
	default:
		return fmt.Errorf("unknown output format: %s", opts.Format)
	}
}

func newDocument(track *models.MergedTrack, creator string) Document {
	positions := track.Positions
	if positions == nil {
		positions = []models.Position{}
	}
	return Document{
		Creator:   creator,
		TimeRange: track.TimeRange,
		Positions: positions,
	}
}

// BuildGPX places every position, in order, in one segment of one track.
func BuildGPX(track *models.MergedTrack, creator string) *gpx.GPX {
	segment := gpx.GPXTrackSegment{
		Points: make([]gpx.GPXPoint, 0, len(track.Positions)),
	}
	for _, p := range track.Positions {
		pt := gpx.GPXPoint{
			Point: gpx.Point{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
			},
			Timestamp: p.Timestamp.UTC(),
		}
		if p.Altitude != nil {
			pt.Elevation = *gpx.NewNullableFloat64(*p.Altitude)
		}
		segment.Points = append(segment.Points, pt)
	}

	return &gpx.GPX{
		Version: "1.1",
		Creator: creator,
		Tracks: []gpx.GPXTrack{{
			Segments: []gpx.GPXTrackSegment{segment},
		}},
	}
}

func writeGPX(w io.Writer, track *models.MergedTrack, opts Options) error {
	data, err := BuildGPX(track, opts.Creator).ToXml(gpx.ToXmlParams{Version: "1.1", Indent: opts.Indent})
	if err != nil {
		return fmt.Errorf("rendering gpx: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing gpx: %w", err)
	}
	return nil
}
