package fuelfinder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rubiojr/fuelfinder/pkg/api"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSource struct {
	resp  *api.OverpassResponse
	err   error
	calls int
}

func (f *fakeSource) FuelStations(_ context.Context, _, _, _ float64) (*api.OverpassResponse, error) {
	f.calls++
	return f.resp, f.err
}

func node(id int64, lat, lon float64, tags map[string]string) api.OverpassElement {
	return api.OverpassElement{Type: "node", ID: id, Lat: lat, Lon: lon, Tags: tags}
}

func TestSearch_SortsAndDefaults(t *testing.T) {
	center := Coordinate{}
	src := &fakeSource{resp: &api.OverpassResponse{Elements: []api.OverpassElement{
		node(3, 0.03, 0, nil),
		node(1, 0.01, 0, nil),
		node(2, 0, 0.02, map[string]string{"amenity": "fuel"}),
	}}}

	stations, err := NewSearcher(src, discardLogger()).Search(context.Background(), center, 5000, SearchOptions{Unit: Kilometers})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	if len(stations) != 3 {
		t.Fatalf("Expected 3 stations, got %d", len(stations))
	}
	for i, expectedID := range []int64{1, 2, 3} {
		st := stations[i]
		if st.ID != expectedID {
			t.Errorf("stations[%d].ID = %d, expected %d", i, st.ID, expectedID)
		}
		if st.Name != UnnamedStation {
			t.Errorf("stations[%d].Name = %q, expected %q", i, st.Name, UnnamedStation)
		}
		if st.Brand != UnknownBrand {
			t.Errorf("stations[%d].Brand = %q, expected %q", i, st.Brand, UnknownBrand)
		}
		if st.Rating != nil || st.Open != nil {
			t.Errorf("stations[%d] should have unknown rating and opening state", i)
		}
		if st.Unit != Kilometers {
			t.Errorf("stations[%d].Unit = %q", i, st.Unit)
		}
	}

	expected := Distance(center, Coordinate{Latitude: 0.01}, Kilometers)
	if !relClose(stations[0].Distance, expected, 1e-12) {
		t.Errorf("stations[0].Distance = %f, expected %f", stations[0].Distance, expected)
	}
	if src.calls != 1 {
		t.Errorf("Expected a single provider request, got %d", src.calls)
	}
}

func TestSearch_StableForEqualDistances(t *testing.T) {
	src := &fakeSource{resp: &api.OverpassResponse{Elements: []api.OverpassElement{
		node(10, 0.01, 0, map[string]string{"name": "North"}),
		node(11, -0.01, 0, map[string]string{"name": "South"}),
		node(12, 0.005, 0, map[string]string{"name": "Near"}),
		node(13, 0.01, 0, map[string]string{"name": "North twin"}),
	}}}

	stations, err := NewSearcher(src, discardLogger()).Search(context.Background(), Coordinate{}, 5000, SearchOptions{})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}

	var names []string
	for _, st := range stations {
		names = append(names, st.Name)
	}
	expected := []string{"Near", "North", "South", "North twin"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Order = %v, expected %v", names, expected)
		}
	}
}

func TestSearch_MilesAndSkipsNonNodes(t *testing.T) {
	src := &fakeSource{resp: &api.OverpassResponse{Elements: []api.OverpassElement{
		{Type: "way", ID: 99, Center: &api.OverpassCenter{Lat: 0.001, Lon: 0}},
		node(1, 0.1, 0, map[string]string{"name": "  ", "brand": "Shell"}),
	}}}

	stations, err := NewSearcher(src, discardLogger()).Search(context.Background(), Coordinate{}, 20000, SearchOptions{Unit: Miles})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("Expected only the node, got %d stations", len(stations))
	}
	if stations[0].Name != UnnamedStation || stations[0].Brand != "Shell" {
		t.Errorf("Unexpected station: %+v", stations[0])
	}
	expected := Distance(Coordinate{}, Coordinate{Latitude: 0.1}, Miles)
	if !relClose(stations[0].Distance, expected, 1e-12) || stations[0].Unit != Miles {
		t.Errorf("Distance = %f %s, expected %f miles", stations[0].Distance, stations[0].Unit, expected)
	}
}

func TestSearch_BrandFilter(t *testing.T) {
	src := &fakeSource{resp: &api.OverpassResponse{Elements: []api.OverpassElement{
		node(1, 0.01, 0, map[string]string{"brand": "Shell"}),
		node(2, 0.02, 0, map[string]string{"brand": "BP"}),
		node(3, 0.03, 0, map[string]string{"brand": "SHELL Express"}),
		node(4, 0.04, 0, map[string]string{"brand": "eshell"}),
		node(5, 0.05, 0, nil),
	}}}
	searcher := NewSearcher(src, discardLogger())

	tests := []struct {
		brand    string
		expected []int64
	}{
		{"shell", []int64{1, 3, 4}},
		{"SHELL", []int64{1, 3, 4}},
		{"bp", []int64{2}},
		{"all", []int64{1, 2, 3, 4, 5}},
		{"All", []int64{1, 2, 3, 4, 5}},
		{"", []int64{1, 2, 3, 4, 5}},
		{"unknown", []int64{5}},
		{"total", nil},
	}

	for _, test := range tests {
		stations, err := searcher.Search(context.Background(), Coordinate{}, 10000, SearchOptions{Brand: test.brand})
		if err != nil {
			t.Fatalf("Search(brand=%q) failed: %v", test.brand, err)
		}
		if len(stations) != len(test.expected) {
			t.Errorf("Search(brand=%q) returned %d stations, expected %d", test.brand, len(stations), len(test.expected))
			continue
		}
		for i, id := range test.expected {
			if stations[i].ID != id {
				t.Errorf("Search(brand=%q)[%d].ID = %d, expected %d", test.brand, i, stations[i].ID, id)
			}
		}
	}
	if src.calls != len(tests) {
		t.Errorf("Expected every search to query the provider, got %d calls for %d searches", src.calls, len(tests))
	}
}

func TestSearch_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	searcher := NewSearcher(api.NewOverpassAPI(srv.URL), discardLogger())
	stations, err := searcher.Search(context.Background(), madrid, 5000, SearchOptions{})
	if stations != nil {
		t.Errorf("Expected no partial results, got %v", stations)
	}

	var perr *api.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("StatusCode = %d, expected %d", perr.StatusCode, http.StatusGatewayTimeout)
	}
}

func TestSearch_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"elements": [
			{"type": "node", "id": 2, "lat": 40.42, "lon": -3.70, "tags": {"name": "Repsol Gran Via", "brand": "Repsol"}},
			{"type": "node", "id": 1, "lat": 40.4169, "lon": -3.7039, "tags": {"brand": "Cepsa"}}
		]}`)
	}))
	defer srv.Close()

	stations, err := NewSearcher(api.NewOverpassAPI(srv.URL), discardLogger()).Search(context.Background(), madrid, 5000, SearchOptions{})
	if err != nil {
		t.Fatalf("Search() failed: %v", err)
	}
	if len(stations) != 2 || stations[0].ID != 1 || stations[1].Name != "Repsol Gran Via" {
		t.Errorf("Unexpected stations: %+v", stations)
	}
	if stations[0].Name != UnnamedStation || stations[0].Brand != "Cepsa" {
		t.Errorf("Unexpected defaults: %+v", stations[0])
	}
}
