package fuelfinder

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
)

// SearchLogger records searched locations. *Storage satisfies it.
type SearchLogger interface {
	LogSearchLocation(ctx context.Context, latitude, longitude, distance float64) error
}

type FinderOptions struct {
	// Locator provides the device position. Nil means no geolocation support.
	Locator Locator
	// SearchLog, when set, receives the center of every search.
	SearchLog SearchLogger
}

// Query holds the per-search parameters.
type Query struct {
	RadiusMeters float64
	Brand        string
	Profile      Profile
}

// Finder runs station searches for one user session. A search that
// completes after a newer one was started is discarded.
type Finder struct {
	resolver  *Resolver
	searcher  *Searcher
	locator   Locator
	searchLog SearchLogger
	log       *slog.Logger

	generation atomic.Uint64

	mu       sync.Mutex
	selector LocationSelector
	center   Coordinate
	stations []Station
}

func NewFinder(resolver *Resolver, searcher *Searcher, opts FinderOptions, logger *slog.Logger) *Finder {
	return &Finder{
		resolver:  resolver,
		searcher:  searcher,
		locator:   opts.Locator,
		searchLog: opts.SearchLog,
		log:       logger,
	}
}

// SetPostalCode makes zip the location of the next search.
func (f *Finder) SetPostalCode(zip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selector.SetPostalCode(zip)
}

// UseDeviceLocation asks the locator for the current position and makes it
// the location of the next search.
func (f *Finder) UseDeviceLocation(ctx context.Context) (Coordinate, error) {
	if f.locator == nil {
		return Coordinate{}, ErrGeolocationUnavailable
	}

	pos, err := f.locator.CurrentPosition(ctx)
	if err != nil {
		var geoErr *GeolocationError
		if errors.As(err, &geoErr) {
			return Coordinate{}, err
		}
		return Coordinate{}, &GeolocationError{Reason: err.Error()}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.selector.UseDevice(pos)
	return pos, nil
}

// SetPosition selects a known position, such as a geocoded place name, as
// the location of the next search.
func (f *Finder) SetPosition(pos Coordinate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selector.UseDevice(pos)
}

// Search resolves the selected location and returns the stations around it.
// ErrSuperseded is returned when another search started meanwhile.
func (f *Finder) Search(ctx context.Context, q Query) ([]Station, error) {
	gen := f.generation.Add(1)

	f.mu.Lock()
	input := f.selector.Current()
	f.mu.Unlock()

	center, err := f.locate(ctx, input, q.Profile.Country)
	if err != nil {
		return nil, f.fail(gen, err)
	}
	if f.stale(gen) {
		return nil, ErrSuperseded
	}

	if f.searchLog != nil {
		if err := f.searchLog.LogSearchLocation(ctx, center.Latitude, center.Longitude, q.RadiusMeters); err != nil {
			f.log.Error("Failed to log search location", "error", err)
		}
	}

	stations, err := f.searcher.Search(ctx, center, q.RadiusMeters, SearchOptions{
		Unit:  q.Profile.Units.DistanceUnit,
		Brand: q.Brand,
	})
	if err != nil {
		return nil, f.fail(gen, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(gen) {
		f.log.Debug("Discarding superseded search results", "generation", gen)
		return nil, ErrSuperseded
	}
	f.center = center
	f.stations = slices.Clone(stations)
	return stations, nil
}

// Results returns the center and stations of the latest successful search.
func (f *Finder) Results() (Coordinate, []Station) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.center, slices.Clone(f.stations)
}

func (f *Finder) locate(ctx context.Context, input LocationInput, country string) (Coordinate, error) {
	switch in := input.(type) {
	case PostalCode:
		return f.resolver.Resolve(ctx, in.Zip, country)
	case DeviceFix:
		return in.Position, nil
	default:
		return Coordinate{}, ErrNoLocationProvided
	}
}

func (f *Finder) stale(gen uint64) bool {
	return f.generation.Load() != gen
}

// fail drops the previous results unless a newer search owns them.
func (f *Finder) fail(gen uint64, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stale(gen) {
		return ErrSuperseded
	}
	f.stations = nil
	return err
}
