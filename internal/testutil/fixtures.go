// fixtures.go - GPX and XMP documents and in-memory file trees for tests
package testutil

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// Point is a track-log point for building GPX fixtures.
type Point struct {
	Lat  float64
	Lon  float64
	Ele  *float64
	Time time.Time // zero means no <time> element; whole seconds survive a GPX round trip
}

// GPXDocument describes the contents of a GPX fixture.
type GPXDocument struct {
	Segments  [][]Point // all in one <trk>
	Waypoints []Point
	Routes    [][]Point
}

// String renders the document as GPX 1.1.
func (d GPXDocument) String() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="testutil" xmlns="http://www.topografix.com/GPX/1/1">` + "\n")
	for _, wp := range d.Waypoints {
		writePoint(&b, "wpt", wp)
	}
	for _, rte := range d.Routes {
		b.WriteString("<rte>\n")
		for _, p := range rte {
			writePoint(&b, "rtept", p)
		}
		b.WriteString("</rte>\n")
	}
	if len(d.Segments) > 0 {
		b.WriteString("<trk>\n")
		for _, seg := range d.Segments {
			b.WriteString("<trkseg>\n")
			for _, p := range seg {
				writePoint(&b, "trkpt", p)
			}
			b.WriteString("</trkseg>\n")
		}
		b.WriteString("</trk>\n")
	}
	b.WriteString("</gpx>\n")
	return b.String()
}

func writePoint(b *strings.Builder, tag string, p Point) {
	fmt.Fprintf(b, `<%s lat="%.7f" lon="%.7f">`, tag, p.Lat, p.Lon)
	if p.Ele != nil {
		fmt.Fprintf(b, "<ele>%.2f</ele>", *p.Ele)
	}
	if !p.Time.IsZero() {
		fmt.Fprintf(b, "<time>%s</time>", p.Time.UTC().Format(time.RFC3339Nano))
	}
	fmt.Fprintf(b, "</%s>\n", tag)
}

// XMP renders a sidecar whose rdf:Description carries props as attributes.
// Keys use the exif:, xmp: and photoshop: prefixes, e.g. "exif:GPSLatitude".
func XMP(props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(`<?xpacket begin="" id="W5M0MpCehiHzreSzNTczkc9d"?>` + "\n")
	b.WriteString(`<x:xmpmeta xmlns:x="adobe:ns:meta/">` + "\n")
	b.WriteString(`<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">` + "\n")
	b.WriteString(`<rdf:Description rdf:about=""`)
	b.WriteString(` xmlns:exif="http://ns.adobe.com/exif/1.0/"`)
	b.WriteString(` xmlns:xmp="http://ns.adobe.com/xap/1.0/"`)
	b.WriteString(` xmlns:photoshop="http://ns.adobe.com/photoshop/1.0/"`)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s=%q", k, props[k])
	}
	b.WriteString("/>\n</rdf:RDF>\n</x:xmpmeta>\n")
	b.WriteString(`<?xpacket end="w"?>` + "\n")
	return b.String()
}

// SidecarProps returns the GPS properties of a sidecar at a fixed spot
// (40,26,46N 79,58,56W, 100 m) with the given extra properties merged in.
func SidecarProps(extra map[string]string) map[string]string {
	props := map[string]string{
		"exif:GPSLatitude":    "40,26,46N",
		"exif:GPSLongitude":   "79,58,56W",
		"exif:GPSAltitude":    "1000/10",
		"exif:GPSAltitudeRef": "0",
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// NewMemFS returns an in-memory filesystem holding files (path to content).
func NewMemFS(t testing.TB, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return fs
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}

// Base is a fixed UTC instant fixtures are built around.
var Base = time.Date(2018, 6, 1, 12, 0, 0, 0, time.UTC)

// At returns Base plus s seconds.
func At(s float64) time.Time {
	return Base.Add(time.Duration(math.Round(s * float64(time.Second))))
}
