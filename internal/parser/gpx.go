package parser

import (
	"fmt"
	"time"

	"github.com/geotrack/geotrack/internal/models"
	"github.com/tkrajina/gpxgo/gpx"
)

// GPXParser handles GPX track logs.
// Track points are thinned to the configured interval with one baseline for
// the whole file; waypoints and route points are always kept.
type GPXParser struct {
	src      Source
	interval time.Duration
}

func NewGPXParser(src Source, interval time.Duration) *GPXParser {
	return &GPXParser{
		src:      src,
		interval: interval,
	}
}

func (p *GPXParser) Name() string {
	return "gpx"
}

func (p *GPXParser) Extensions() []string {
	return []string{".gpx"}
}

func (p *GPXParser) CanParse(filePath string) bool {
	return hasExtension(filePath, p.Extensions())
}

func (p *GPXParser) Parse(filePath string) (*models.ParsedTrack, error) {
	data, err := p.src.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, filePath, err)
	}

	return p.decode(filePath, doc), nil
}

// decode flattens tracks, then waypoints, then routes into one sequence.
func (p *GPXParser) decode(filePath string, doc *gpx.GPX) *models.ParsedTrack {
	result := models.NewParsedTrack()
	thinner := NewThinner(p.interval)
	untimed := 0

	for ti := range doc.Tracks {
		for si := range doc.Tracks[ti].Segments {
			points := doc.Tracks[ti].Segments[si].Points
			segment := make([]models.Position, 0, len(points))
			for i := range points {
				pos, ok := toPosition(&points[i], filePath)
				if !ok {
					untimed++
					continue
				}
				segment = append(segment, pos)
			}
			result.Positions = append(result.Positions, thinner.Segment(segment)...)
		}
	}

	for i := range doc.Waypoints {
		pos, ok := toPosition(&doc.Waypoints[i], filePath)
		if !ok {
			untimed++
			continue
		}
		result.Positions = append(result.Positions, pos)
	}

	for ri := range doc.Routes {
		for i := range doc.Routes[ri].Points {
			pos, ok := toPosition(&doc.Routes[ri].Points[i], filePath)
			if !ok {
				untimed++
				continue
			}
			result.Positions = append(result.Positions, pos)
		}
	}

	if untimed > 0 {
		result.Warn(filePath, fmt.Sprintf("skipped %d points without timestamp", untimed))
	}

	return result
}

// toPosition converts a GPX point. GPX times are UTC by definition, so the
// instant is only re-labelled, never shifted.
func toPosition(pt *gpx.GPXPoint, source string) (models.Position, bool) {
	if pt.Timestamp.IsZero() {
		return models.Position{}, false
	}

	pos := models.Position{
		Timestamp: pt.Timestamp.UTC(),
		Latitude:  pt.Latitude,
		Longitude: pt.Longitude,
		Source:    source,
	}
	if pt.Elevation.NotNull() {
		pos.Altitude = models.Float64(pt.Elevation.Value())
	}
	return pos, true
}

// Thinner drops track points that follow the last kept point by less than
// the interval. One Thinner spans a whole file, so the baseline carries over
// from one segment to the next. The final point of each segment is always
// kept but does not move the baseline. An interval of zero or less keeps
// every point.
type Thinner struct {
	interval time.Duration
	last     time.Time
	haveLast bool
}

func NewThinner(interval time.Duration) *Thinner {
	return &Thinner{interval: interval}
}

// Segment returns the points of one segment that survive thinning.
func (t *Thinner) Segment(points []models.Position) []models.Position {
	if len(points) == 0 {
		return nil
	}
	if t.interval <= 0 {
		out := make([]models.Position, len(points))
		copy(out, points)
		return out
	}

	out := make([]models.Position, 0, len(points))
	for i, pt := range points {
		if i == len(points)-1 {
			out = append(out, pt)
			break
		}
		if !t.haveLast || pt.Timestamp.Sub(t.last) >= t.interval {
			out = append(out, pt)
			t.last = pt.Timestamp
			t.haveLast = true
		}
	}

	return out
}
