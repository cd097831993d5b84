package parser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/geotrack/geotrack/internal/models"
)

// XMPParser handles XMP sidecar files, each carrying a single GPS fix.
//
// Capture time comes from the first of GPSTimeStamp, DateTimeOriginal,
// DateCreated and CreateDate that is present. GPSTimeStamp is UTC. The
// others are camera wall clock: with a ZoneResolver they are localized at
// the photo's position, without one the wall clock is labelled UTC as is.
type XMPParser struct {
	src   Source
	shift time.Duration
	zones ZoneResolver
}

func NewXMPParser(src Source, shift time.Duration, zones ZoneResolver) *XMPParser {
	return &XMPParser{
		src:   src,
		shift: shift,
		zones: zones,
	}
}

func (p *XMPParser) Name() string {
	return "xmp"
}

func (p *XMPParser) Extensions() []string {
	return []string{".xmp"}
}

func (p *XMPParser) CanParse(filePath string) bool {
	return hasExtension(filePath, p.Extensions())
}

func (p *XMPParser) Parse(filePath string) (*models.ParsedTrack, error) {
	data, err := p.src.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	props, err := ReadProperties(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, filePath, err)
	}

	result := models.NewParsedTrack()
	pos, warnings, err := p.decode(props)
	result.Warnings = append(result.Warnings, toWarnings(filePath, warnings)...)
	if err != nil {
		result.Warn(filePath, fmt.Sprintf("could not find necessary data: %v", err))
		return result, nil
	}

	pos.Source = filePath
	result.Positions = append(result.Positions, pos)
	return result, nil
}

// decode builds the position. A returned error means the file yields no
// position; warnings describe degraded but usable results.
func (p *XMPParser) decode(props Properties) (models.Position, []string, error) {
	var warnings []string

	lat, err := requireValue(props, NSExif, "GPSLatitude", ParseLatitude)
	if err != nil {
		return models.Position{}, nil, err
	}
	lon, err := requireValue(props, NSExif, "GPSLongitude", ParseLongitude)
	if err != nil {
		return models.Position{}, nil, err
	}

	rawAlt, ok := props.Get(NSExif, "GPSAltitude")
	if !ok {
		return models.Position{}, nil, fmt.Errorf("%w: GPSAltitude", ErrMissingField)
	}
	ref, _ := props.Get(NSExif, "GPSAltitudeRef")
	alt, err := ParseAltitude(rawAlt, ref)
	if err != nil {
		return models.Position{}, nil, err
	}

	field, rawTime, err := findCaptureTime(props)
	if err != nil {
		return models.Position{}, nil, err
	}

	loc := time.UTC
	if !field.utc && p.zones != nil {
		zone, err := p.zones.Lookup(lat, lon)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("timezone lookup failed, treating %s as UTC: %v", field, err))
		} else {
			loc = zone
		}
	}

	ts, err := parseCaptureTime(rawTime, loc)
	if err != nil {
		return models.Position{}, warnings, err
	}

	return models.Position{
		Timestamp: ts.Add(p.shift),
		Latitude:  lat,
		Longitude: lon,
		Altitude:  models.Float64(alt),
	}, warnings, nil
}

func requireValue(props Properties, space, local string, parse func(string) (float64, error)) (float64, error) {
	raw, ok := props.Get(space, local)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, local)
	}
	v, err := parse(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", local, err)
	}
	return v, nil
}

func toWarnings(file string, reasons []string) []models.DecodeWarning {
	out := make([]models.DecodeWarning, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, models.DecodeWarning{File: file, Reason: r})
	}
	return out
}
