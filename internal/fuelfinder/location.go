package fuelfinder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

const (
	geocodeCacheExpiry  = 30 * time.Minute
	geocodeCacheCleanup = 90 * time.Minute
	defaultPlaceServer  = "https://nominatim.openstreetmap.org/"
)

// Geocoder looks up a postal code. *api.NominatimAPI satisfies it.
type Geocoder interface {
	SearchPostalCode(ctx context.Context, postalCode, country string) ([]api.Place, error)
}

// Resolver turns postal codes into coordinates.
type Resolver struct {
	geocoder Geocoder
	log      *slog.Logger
}

func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, log: logger}
}

// Resolve returns the coordinates of the first place matching zip in the
// given country. Every failure matches ErrLocationNotFound; the cause is
// further tagged with ErrNoGeocodeResults or ErrGeocodeTransport.
func (r *Resolver) Resolve(ctx context.Context, zip, country string) (Coordinate, error) {
	zip = strings.TrimSpace(zip)

	places, err := r.geocoder.SearchPostalCode(ctx, zip, country)
	if err != nil {
		r.log.Warn("Geocoding request failed", "zip", zip, "country", country, "error", err)
		return Coordinate{}, fmt.Errorf("%w: %w: %w", ErrLocationNotFound, ErrGeocodeTransport, err)
	}
	if len(places) == 0 {
		r.log.Debug("Geocoding returned no results", "zip", zip, "country", country)
		return Coordinate{}, fmt.Errorf("%w: %w: %s", ErrLocationNotFound, ErrNoGeocodeResults, zip)
	}

	coord, err := placeToCoordinate(places[0].Lat, places[0].Lon)
	if err != nil {
		r.log.Warn("Geocoding returned malformed coordinates", "zip", zip, "error", err)
		return Coordinate{}, fmt.Errorf("%w: %w: %w", ErrLocationNotFound, ErrGeocodeTransport, err)
	}

	r.log.Debug("Location resolved", "zip", zip, "latitude", coord.Latitude, "longitude", coord.Longitude)
	return coord, nil
}

func placeToCoordinate(latStr, lonStr string) (Coordinate, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("error parsing latitude: %w", err)
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("error parsing longitude: %w", err)
	}

	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// CachedGeocoder memoizes successful, non-empty lookups of another Geocoder.
type CachedGeocoder struct {
	next  Geocoder
	cache *cache.Cache
}

func NewCachedGeocoder(next Geocoder) *CachedGeocoder {
	return &CachedGeocoder{
		next:  next,
		cache: cache.New(geocodeCacheExpiry, geocodeCacheCleanup),
	}
}

func (g *CachedGeocoder) SearchPostalCode(ctx context.Context, postalCode, country string) ([]api.Place, error) {
	key := strings.ToLower(postalCode + "|" + country)
	if cached, found := g.cache.Get(key); found {
		return cached.([]api.Place), nil
	}

	places, err := g.next.SearchPostalCode(ctx, postalCode, country)
	if err != nil {
		return nil, err
	}
	if len(places) > 0 {
		g.cache.Set(key, places, cache.DefaultExpiration)
	}

	return places, nil
}

// PlaceResolver geocodes free-text place names such as "Tibidabo, Barcelona".
type PlaceResolver struct {
	server string
}

func NewPlaceResolver(server string) *PlaceResolver {
	if server == "" {
		server = defaultPlaceServer
	}
	return &PlaceResolver{server: server}
}

// Resolve returns the coordinates and display name of the best match for name.
func (p *PlaceResolver) Resolve(name string) (Coordinate, string, error) {
	gominatim.SetServer(p.server)
	qry := gominatim.SearchQuery{
		Q: name,
	}

	results, err := qry.Get()
	if err != nil {
		return Coordinate{}, "", fmt.Errorf("%w: %w: %w", ErrLocationNotFound, ErrGeocodeTransport, err)
	}
	if len(results) == 0 {
		return Coordinate{}, "", fmt.Errorf("%w: %w: %s", ErrLocationNotFound, ErrNoGeocodeResults, name)
	}

	coord, err := placeToCoordinate(results[0].Lat, results[0].Lon)
	if err != nil {
		return Coordinate{}, "", fmt.Errorf("%w: %w: %w", ErrLocationNotFound, ErrGeocodeTransport, err)
	}

	return coord, results[0].DisplayName, nil
}

// Locator reports the device position.
type Locator interface {
	CurrentPosition(ctx context.Context) (Coordinate, error)
}

// StaticLocator is a Locator with a fixed position, used when coordinates are
// given on the command line.
type StaticLocator struct {
	Position Coordinate
}

func (l StaticLocator) CurrentPosition(context.Context) (Coordinate, error) {
	if !l.Position.Valid() {
		return Coordinate{}, &GeolocationError{Reason: fmt.Sprintf("invalid position %f,%f", l.Position.Latitude, l.Position.Longitude)}
	}
	return l.Position, nil
}

// LocationInput is the location a search starts from: either a PostalCode
// or a DeviceFix.
type LocationInput interface {
	locationInput()
}

type PostalCode struct {
	Zip string
}

type DeviceFix struct {
	Position Coordinate
}

func (PostalCode) locationInput() {}
func (DeviceFix) locationInput()  {}

// LocationSelector keeps whichever location input was supplied last.
type LocationSelector struct {
	current LocationInput
}

// SetPostalCode selects zip. A blank zip clears a typed postal code but keeps
// a previously selected device fix.
func (s *LocationSelector) SetPostalCode(zip string) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		if _, typed := s.current.(PostalCode); typed {
			s.current = nil
		}
		return
	}
	s.current = PostalCode{Zip: zip}
}

func (s *LocationSelector) UseDevice(pos Coordinate) {
	s.current = DeviceFix{Position: pos}
}

// Current returns the selected input, or nil when none was supplied.
func (s *LocationSelector) Current() LocationInput {
	return s.current
}
