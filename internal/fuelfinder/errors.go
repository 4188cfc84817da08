package fuelfinder

import (
	"errors"

	"github.com/rubiojr/fuelfinder/pkg/api"
)

var (
	ErrGeolocationUnavailable = errors.New("geolocation is not supported")
	ErrLocationNotFound       = errors.New("could not find location")
	ErrNoGeocodeResults       = errors.New("geocoder returned no results")
	ErrGeocodeTransport       = errors.New("geocoder request failed")
	ErrNoLocationProvided     = errors.New("no location provided")
	ErrSuperseded             = errors.New("search superseded by a newer one")
)

// GeolocationError reports a failed device position request.
type GeolocationError struct {
	Reason string
}

func (e *GeolocationError) Error() string {
	return "unable to get location: " + e.Reason
}

// UserMessage returns the single inline message shown for err.
func UserMessage(err error) string {
	var geoErr *GeolocationError
	var provErr *api.ProviderError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrGeolocationUnavailable):
		return "Geolocation is not supported on this device."
	case errors.As(err, &geoErr):
		return "Unable to get location: " + geoErr.Reason
	case errors.Is(err, ErrLocationNotFound):
		return "Could not find location for this postal code."
	case errors.Is(err, ErrNoLocationProvided):
		return `Please enter a postal code or use "My Location".`
	case errors.As(err, &provErr):
		return "Station search failed: " + provErr.Error()
	default:
		return "An error occurred while fetching data."
	}
}
