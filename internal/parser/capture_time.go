package parser

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// captureField is one candidate timestamp property of a sidecar.
type captureField struct {
	name xml.Name
	utc  bool // GPS derived; otherwise wall clock of unknown zone
}

func (f captureField) String() string {
	return f.name.Local
}

// captureFields are checked in order; the first present wins.
var captureFields = []captureField{
	{name: xml.Name{Space: NSExif, Local: "GPSTimeStamp"}, utc: true},
	{name: xml.Name{Space: NSExif, Local: "DateTimeOriginal"}},
	{name: xml.Name{Space: NSPhotoshop, Local: "DateCreated"}},
	{name: xml.Name{Space: NSXMP, Local: "CreateDate"}},
}

// findCaptureTime returns the highest priority timestamp field present.
func findCaptureTime(props Properties) (captureField, string, error) {
	for _, f := range captureFields {
		if v, ok := props[f.name]; ok && v != "" {
			return f, v, nil
		}
	}
	return captureField{}, "", ErrNoCaptureTime
}

// exifDate matches the EXIF "2006:01:02 15:04:05" form some tools copy into XMP.
var exifDate = regexp.MustCompile(`^(\d{4}):(\d{2}):(\d{2})([ T])`)

// parseCaptureTime reads a timestamp. Values without an explicit offset are
// interpreted as wall clock in loc. The result is UTC.
func parseCaptureTime(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	s = exifDate.ReplaceAllString(s, "$1-$2-$3$4")

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedValue, raw)
	}
	return t.UTC(), nil
}
