package fuelfinder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rubiojr/fuelfinder/pkg/api"
)

const (
	UnnamedStation = "Unnamed fuel station"
	UnknownBrand   = "Unknown brand"
	AllBrands      = "all"
)

// Station is a fuel station found around a search center. Rating and Open
// are nil when the data source does not know them.
type Station struct {
	ID       int64        `json:"id"`
	Name     string       `json:"name"`
	Brand    string       `json:"brand"`
	Location Coordinate   `json:"location"`
	Distance float64      `json:"distance"`
	Unit     DistanceUnit `json:"unit"`
	Rating   *float64     `json:"rating,omitempty"`
	Open     *bool        `json:"open,omitempty"`
}

// StationSource queries fuel station POIs. *api.OverpassAPI satisfies it.
type StationSource interface {
	FuelStations(ctx context.Context, lat, lon, radiusMeters float64) (*api.OverpassResponse, error)
}

type SearchOptions struct {
	Unit  DistanceUnit
	Brand string
}

type Searcher struct {
	source StationSource
	log    *slog.Logger
}

func NewSearcher(source StationSource, logger *slog.Logger) *Searcher {
	return &Searcher{source: source, log: logger}
}

// Search returns the fuel stations within radiusMeters of center, nearest
// first. Stations at equal distance keep the order the source returned them
// in. Every call queries the source.
func (s *Searcher) Search(ctx context.Context, center Coordinate, radiusMeters float64, opts SearchOptions) ([]Station, error) {
	unit := opts.Unit
	if unit == "" {
		unit = Kilometers
	}

	resp, err := s.source.FuelStations(ctx, center.Latitude, center.Longitude, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("error fetching nearby stations: %w", err)
	}

	stations := make([]Station, 0, len(resp.Elements))
	for i := range resp.Elements {
		el := &resp.Elements[i]
		if el.Type != "node" {
			continue
		}

		loc := Coordinate{Latitude: el.Lat, Longitude: el.Lon}
		stations = append(stations, Station{
			ID:       el.ID,
			Name:     tagOrDefault(el, "name", UnnamedStation),
			Brand:    tagOrDefault(el, "brand", UnknownBrand),
			Location: loc,
			Distance: Distance(center, loc, unit),
			Unit:     unit,
		})
	}

	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Distance < stations[j].Distance
	})

	filtered := FilterByBrand(stations, opts.Brand)
	s.log.Debug("Station search completed", "found", len(stations), "returned", len(filtered), "brand", opts.Brand)

	return filtered, nil
}

// FilterByBrand keeps the stations whose brand contains brand, ignoring
// case. An empty brand or AllBrands returns stations unchanged.
func FilterByBrand(stations []Station, brand string) []Station {
	needle := strings.ToLower(strings.TrimSpace(brand))
	if needle == "" || needle == AllBrands {
		return stations
	}

	filtered := make([]Station, 0, len(stations))
	for _, st := range stations {
		if strings.Contains(strings.ToLower(st.Brand), needle) {
			filtered = append(filtered, st)
		}
	}
	return filtered
}

func tagOrDefault(el *api.OverpassElement, key, def string) string {
	if v := strings.TrimSpace(el.Tag(key)); v != "" {
		return v
	}
	return def
}
