package fuelfinder

import "math"

type DistanceUnit string

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "miles"
)

const (
	earthRadiusKm    = 6371.0
	earthRadiusMiles = 3959.0
	metersPerKm      = 1000.0
	metersPerMile    = 1609.34
)

// Coordinate is a WGS84 position in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within the WGS84 ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Distance returns the great-circle distance between a and b using the
// haversine formula. Any unit other than Miles is treated as kilometers.
func Distance(a, b Coordinate, unit DistanceUnit) float64 {
	r := earthRadiusKm
	if unit == Miles {
		r = earthRadiusMiles
	}

	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	h = math.Min(h, 1)

	return r * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// RadiusMeters converts a search radius expressed in unit to meters.
func RadiusMeters(radius float64, unit DistanceUnit) float64 {
	if unit == Miles {
		return radius * metersPerMile
	}
	return radius * metersPerKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
