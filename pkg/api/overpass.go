package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// OverpassAPI queries the Overpass interpreter for fuel amenities.
type OverpassAPI struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewOverpassAPI creates a client for the interpreter at baseURL. An empty
// baseURL selects DefaultOverpassURL.
func NewOverpassAPI(baseURL string) *OverpassAPI {
	return &OverpassAPI{
		baseURL:    orDefault(baseURL, DefaultOverpassURL),
		userAgent:  DefaultUserAgent,
		httpClient: newHTTPClient(),
	}
}

// FuelStationsQuery builds the Overpass QL query selecting amenity=fuel nodes
// within radiusMeters of lat/lon.
func FuelStationsQuery(lat, lon, radiusMeters float64) string {
	return fmt.Sprintf(`[out:json];
(
  node["amenity"="fuel"](around:%s,%s,%s);
);
out center;`, formatFloat(radiusMeters), formatFloat(lat), formatFloat(lon))
}

// FuelStations fetches the fuel station nodes within radiusMeters of lat/lon.
func (api *OverpassAPI) FuelStations(ctx context.Context, lat, lon, radiusMeters float64) (*OverpassResponse, error) {
	query := FuelStationsQuery(lat, lon, radiusMeters)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, api.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	req.Header.Set("User-Agent", api.userAgent)

	var resp OverpassResponse
	if err := doJSON(api.httpClient, "overpass", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
