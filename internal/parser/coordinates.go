package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCoordinate converts an XMP GPS coordinate to signed degrees.
// The value is up to three comma separated components (degrees, minutes,
// seconds) followed by a hemisphere letter: "40,26,46N" or "79,58.93W".
// S and W are negative.
func ParseCoordinate(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: empty coordinate", ErrMalformedValue)
	}

	sign := 1.0
	switch s[len(s)-1] {
	case 'S', 's', 'W', 'w':
		sign = -1
		s = s[:len(s)-1]
	case 'N', 'n', 'E', 'e':
		s = s[:len(s)-1]
	}

	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: coordinate %q has %d components", ErrMalformedValue, raw, len(parts))
	}

	total := 0.0
	scale := 1.0
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || !finite(v) {
			return 0, fmt.Errorf("%w: component %d of coordinate %q", ErrMalformedValue, i, raw)
		}
		total += v / scale
		scale *= 60
	}

	return sign * total, nil
}

// ParseLatitude is ParseCoordinate limited to [-90, 90].
func ParseLatitude(raw string) (float64, error) {
	return parseBounded(raw, 90)
}

// ParseLongitude is ParseCoordinate limited to [-180, 180].
func ParseLongitude(raw string) (float64, error) {
	return parseBounded(raw, 180)
}

func parseBounded(raw string, limit float64) (float64, error) {
	v, err := ParseCoordinate(raw)
	if err != nil {
		return 0, err
	}
	if math.Abs(v) > limit {
		return 0, fmt.Errorf("%w: coordinate %q outside ±%g degrees", ErrMalformedValue, raw, limit)
	}
	return v, nil
}

// ParseAltitude converts an XMP rational altitude ("a/b") and its reference
// flag to signed meters. Reference "1" means below sea level; an empty
// reference means above.
func ParseAltitude(rational, ref string) (float64, error) {
	sign := 1.0
	switch r := strings.TrimSpace(ref); r {
	case "", "0":
	case "1":
		sign = -1
	default:
		return 0, fmt.Errorf("%w: altitude reference %q", ErrMalformedValue, ref)
	}

	num, den, found := strings.Cut(strings.TrimSpace(rational), "/")
	a, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || !finite(a) {
		return 0, fmt.Errorf("%w: altitude %q", ErrMalformedValue, rational)
	}
	b := 1.0
	if found {
		b, err = strconv.ParseFloat(strings.TrimSpace(den), 64)
		if err != nil || !finite(b) {
			return 0, fmt.Errorf("%w: altitude %q", ErrMalformedValue, rational)
		}
	}
	if b == 0 {
		return 0, fmt.Errorf("%w: altitude %q has zero denominator", ErrMalformedValue, rational)
	}

	return sign * (a / b), nil
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
