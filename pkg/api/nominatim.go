package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// NominatimAPI performs structured postal code lookups against Nominatim.
type NominatimAPI struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimAPI creates a client for the search endpoint at baseURL. An
// empty baseURL selects DefaultNominatimURL.
func NewNominatimAPI(baseURL string) *NominatimAPI {
	return &NominatimAPI{
		baseURL:    orDefault(baseURL, DefaultNominatimURL),
		userAgent:  DefaultUserAgent,
		httpClient: newHTTPClient(),
	}
}

// SearchPostalCode returns at most one place matching postalCode. The
// country code restricts the search when not empty.
func (api *NominatimAPI) SearchPostalCode(ctx context.Context, postalCode, country string) ([]Place, error) {
	params := url.Values{}
	params.Set("postalcode", postalCode)
	if country != "" {
		params.Set("country", strings.ToLower(country))
	}
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, api.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	// Nominatim's usage policy rejects requests without an identifying agent.
	req.Header.Set("User-Agent", api.userAgent)

	var places []Place
	if err := doJSON(api.httpClient, "nominatim", req, &places); err != nil {
		return nil, err
	}

	return places, nil
}
