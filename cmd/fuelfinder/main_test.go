package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rubiojr/fuelfinder/internal/fuelfinder"
)

const stationsFixture = `{
  "elements": [
    {"type": "node", "id": 2, "lat": 12.99, "lon": 77.60, "tags": {"name": "Far Fuel", "brand": "HP"}},
    {"type": "node", "id": 1, "lat": 12.9720, "lon": 77.5950, "tags": {"name": "Near Fuel", "brand": "IOCL"}}
  ]
}`

func newTestServers(t *testing.T) (overpass, nominatim *httptest.Server) {
	t.Helper()
	overpass = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, stationsFixture)
	}))
	nominatim = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("postalcode") != "560001" {
			io.WriteString(w, `[]`)
			return
		}
		io.WriteString(w, `[{"place_id": 1, "lat": "12.9716", "lon": "77.5946", "display_name": "Bengaluru"}]`)
	}))
	t.Cleanup(overpass.Close)
	t.Cleanup(nominatim.Close)
	return overpass, nominatim
}

func openTestStorage(t *testing.T, dbPath string) *fuelfinder.Storage {
	t.Helper()
	s, err := fuelfinder.NewStorage(context.Background(), dbPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNearbyCommand(t *testing.T) {
	overpass, nominatim := newTestServers(t)
	dbPath := filepath.Join(t.TempDir(), "test.db")
	gpxPath := filepath.Join(t.TempDir(), "stations.gpx")

	err := newApp().Run([]string{
		"fuelfinder", "--db", dbPath,
		"nearby", "--zip", "560001", "--country", "IN",
		"--overpass-url", overpass.URL, "--nominatim-url", nominatim.URL,
		"--gpx", gpxPath,
	})
	if err != nil {
		t.Fatalf("nearby failed: %v", err)
	}

	logs, err := openTestStorage(t, dbPath).GetLocationLogs(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetLocationLogs() failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Latitude != 12.97 || logs[0].Longitude != 77.59 {
		t.Errorf("Expected the search center to be logged, got %+v", logs)
	}
	if logs[0].Distance != 10000 {
		t.Errorf("Expected a 10 km radius in meters, got %v", logs[0].Distance)
	}
}

func TestNearbyCommandErrors(t *testing.T) {
	overpass, nominatim := newTestServers(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "no location",
			args: []string{"nearby"},
			want: `Please enter a postal code or use "My Location".`,
		},
		{
			name: "unknown postal code",
			args: []string{"nearby", "--zip", "000000"},
			want: "Could not find location for this postal code.",
		},
		{
			name: "conflicting locations",
			args: []string{"nearby", "--zip", "560001", "--lat", "1", "--long", "2"},
			want: "mutually exclusive",
		},
		{
			name: "incomplete coordinates",
			args: []string{"nearby", "--lat", "1"},
			want: "both --lat and --long are required",
		},
		{
			name: "invalid position",
			args: []string{"nearby", "--lat", "100", "--long", "2"},
			want: "Unable to get location:",
		},
		{
			name: "bad radius",
			args: []string{"nearby", "--zip", "560001", "--radius", "0"},
			want: "radius must be a positive number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"fuelfinder", "--db", filepath.Join(t.TempDir(), "test.db")}
			args = append(args, tt.args...)
			args = append(args, "--overpass-url", overpass.URL, "--nominatim-url", nominatim.URL)

			err := newApp().Run(args)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestCostCommandSavesHistory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	err := newApp().Run([]string{
		"fuelfinder", "--db", dbPath,
		"cost", "--distance", "100", "--mileage", "20", "--rate", "100", "--save",
	})
	if err != nil {
		t.Fatalf("cost failed: %v", err)
	}

	err = newApp().Run([]string{
		"fuelfinder", "--db", dbPath,
		"budget", "--amount", "500", "--mileage", "20", "--rate", "100", "--save",
	})
	if err != nil {
		t.Fatalf("budget failed: %v", err)
	}

	storage := openTestStorage(t, dbPath)
	history := fuelfinder.NewHistory(storage, slog.New(slog.NewTextHandler(io.Discard, nil)))
	calcs := history.Load(context.Background())
	if len(calcs) != 2 {
		t.Fatalf("Expected 2 saved calculations, got %d", len(calcs))
	}
	if calcs[0].Type != fuelfinder.BudgetToDistanceCalc || calcs[0].Outputs.Distance != 100 {
		t.Errorf("Unexpected latest calculation: %+v", calcs[0])
	}
	if calcs[1].Type != fuelfinder.DistanceToCostCalc || calcs[1].Outputs.TotalCost != 500 {
		t.Errorf("Unexpected first calculation: %+v", calcs[1])
	}
	if calcs[1].Inputs.CountryCode != fuelfinder.DefaultCountry {
		t.Errorf("Expected the default country to be recorded, got %q", calcs[1].Inputs.CountryCode)
	}
}

func TestCostCommandRejectsInvalidInputs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	for _, args := range [][]string{
		{"cost", "--distance", "abc", "--mileage", "20", "--rate", "100"},
		{"cost", "--distance", "100", "--mileage", "0", "--rate", "100"},
		{"budget", "--amount", "-5", "--mileage", "20", "--rate", "100"},
	} {
		err := newApp().Run(append([]string{"fuelfinder", "--db", dbPath}, args...))
		if !errors.Is(err, errInvalidInputs) {
			t.Errorf("%v: expected errInvalidInputs, got %v", args, err)
		}
	}
}

func TestCountrySet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if err := newApp().Run([]string{"fuelfinder", "--db", dbPath, "country", "set", "us"}); err != nil {
		t.Fatalf("country set failed: %v", err)
	}
	if err := newApp().Run([]string{"fuelfinder", "--db", dbPath, "country", "set", "XX"}); err == nil {
		t.Error("Expected unknown country to be rejected")
	}

	prefs := fuelfinder.NewPreferences(openTestStorage(t, dbPath), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if got := prefs.Load(context.Background()); got.Country != "US" {
		t.Errorf("Expected US to be saved, got %s", got.Country)
	}
}

func TestFormatCalculation(t *testing.T) {
	cost := fuelfinder.TripCalculation{
		Type:      fuelfinder.DistanceToCostCalc,
		Timestamp: "2024-06-02T10:00:00.000Z",
		Inputs:    fuelfinder.CalculationInputs{Distance: 100, Mileage: 20, FuelRate: 3, CountryCode: "US"},
		Outputs:   fuelfinder.CalculationOutputs{FuelNeeded: 5, TotalCost: 15},
	}
	want := "2024-06-02T10:00:00.000Z  cost    100.00 miles -> $15.00 (5.00 gallons)"
	if got := formatCalculation(cost); got != want {
		t.Errorf("formatCalculation() = %q, want %q", got, want)
	}

	budget := fuelfinder.TripCalculation{
		Type:      fuelfinder.BudgetToDistanceCalc,
		Timestamp: "2024-06-02T10:00:00.001Z",
		Inputs:    fuelfinder.CalculationInputs{Budget: 500, Mileage: 20, FuelRate: 100, CountryCode: "IN"},
		Outputs:   fuelfinder.CalculationOutputs{FuelAffordable: 5, Distance: 100},
	}
	want = "2024-06-02T10:00:00.001Z  budget  ₹500.00 -> 100.00 km (5.00 L)"
	if got := formatCalculation(budget); got != want {
		t.Errorf("formatCalculation() = %q, want %q", got, want)
	}
}

func TestFormatExtras(t *testing.T) {
	rating := 4.5
	open := false

	if got := formatExtras(fuelfinder.Station{}); got != "Rating: n/a | Hours: unknown" {
		t.Errorf("Unexpected extras for unknown data: %q", got)
	}
	if got := formatExtras(fuelfinder.Station{Rating: &rating, Open: &open}); got != "Rating: 4.5 | Closed" {
		t.Errorf("Unexpected extras: %q", got)
	}
}

func TestPlaceServer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://nominatim.openstreetmap.org/search", "https://nominatim.openstreetmap.org/"},
		{"https://nominatim.openstreetmap.org/search/", "https://nominatim.openstreetmap.org/"},
		{"http://localhost:8080/", "http://localhost:8080"},
	}

	for _, tt := range tests {
		if got := placeServer(tt.in); got != tt.want {
			t.Errorf("placeServer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
