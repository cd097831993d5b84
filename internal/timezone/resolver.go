// Package timezone maps coordinates to the IANA timezone observed there.
//
// The lookup table is large, so a Resolver builds it on first use and only
// when the caller asked for geographic resolution at all.
package timezone

import (
	"errors"
	"fmt"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/ringsaturn/tzf"
)

// ErrNoZone is returned when no timezone covers a coordinate.
var ErrNoZone = errors.New("no timezone at location")

// Finder looks up a zone name. Note the longitude-first argument order.
type Finder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Resolver resolves coordinates to locations, building its Finder lazily.
type Resolver struct {
	newFinder func() (Finder, error)

	once    sync.Once
	finder  Finder
	initErr error

	mu    sync.Mutex
	cache map[string]*time.Location
}

// NewResolver returns a resolver backed by the embedded tzf boundary data.
func NewResolver() *Resolver {
	return NewResolverWithFinder(func() (Finder, error) {
		return tzf.NewDefaultFinder()
	})
}

// NewResolverWithFinder returns a resolver that calls newFinder on first lookup.
func NewResolverWithFinder(newFinder func() (Finder, error)) *Resolver {
	return &Resolver{
		newFinder: newFinder,
		cache:     make(map[string]*time.Location),
	}
}

// Lookup returns the location in effect at lat/lon.
func (r *Resolver) Lookup(lat, lon float64) (*time.Location, error) {
	r.once.Do(func() {
		r.finder, r.initErr = r.newFinder()
	})
	if r.initErr != nil {
		return nil, fmt.Errorf("loading timezone table: %w", r.initErr)
	}

	name := r.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return nil, fmt.Errorf("%w: %.6f,%.6f", ErrNoZone, lat, lon)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.cache[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading zone %s: %w", name, err)
	}
	r.cache[name] = loc
	return loc, nil
}
