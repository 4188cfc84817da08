package fuelfinder

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"
)

// ExportGPX renders the search center and stations as GPX 1.1 waypoints so
// they can be loaded into navigation apps.
func ExportGPX(center Coordinate, stations []Station) ([]byte, error) {
	g := &gpx.GPX{
		Name:    "Nearby fuel stations",
		Creator: "fuelfinder",
	}

	g.Waypoints = append(g.Waypoints, gpx.GPXPoint{
		Point: gpx.Point{Latitude: center.Latitude, Longitude: center.Longitude},
		Name:  "Search center",
	})

	for _, st := range stations {
		g.Waypoints = append(g.Waypoints, gpx.GPXPoint{
			Point:       gpx.Point{Latitude: st.Location.Latitude, Longitude: st.Location.Longitude},
			Name:        st.Name,
			Description: fmt.Sprintf("%s, %.2f %s away", st.Brand, st.Distance, st.Unit),
			Type:        "fuel",
		})
	}

	data, err := g.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return nil, fmt.Errorf("error encoding GPX: %w", err)
	}
	return data, nil
}
