package fuelfinder

import (
	"context"
	"testing"
)

func TestLookupUnits(t *testing.T) {
	tests := []struct {
		code     string
		unit     DistanceUnit
		currency string
		found    bool
	}{
		{"US", Miles, "$", true},
		{"us", Miles, "$", true},
		{" uk ", Miles, "£", true},
		{"IN", Kilometers, "₹", true},
		{"DE", Kilometers, "€", true},
		{"FR", "", "", false},
		{"", "", "", false},
	}

	for _, test := range tests {
		p, ok := LookupUnits(test.code)
		if ok != test.found {
			t.Errorf("LookupUnits(%q) found = %v, expected %v", test.code, ok, test.found)
			continue
		}
		if p.DistanceUnit != test.unit || p.CurrencySymbol != test.currency {
			t.Errorf("LookupUnits(%q) = %+v", test.code, p)
		}
	}

	if len(CountryCodes()) != 15 {
		t.Errorf("Expected 15 countries, got %d", len(CountryCodes()))
	}
}

func TestProfileFor(t *testing.T) {
	if p := ProfileFor("us"); p.Country != "US" || p.Units.MileageUnit != "mpg" {
		t.Errorf("ProfileFor(us) = %+v", p)
	}
	if p := ProfileFor("atlantis"); p.Country != DefaultCountry {
		t.Errorf("Unknown country should fall back to %s, got %+v", DefaultCountry, p)
	}
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	slots := NewMemorySlots()
	prefs := NewPreferences(slots, discardLogger())

	if p := prefs.Load(ctx); p.Country != DefaultCountry {
		t.Errorf("Expected default country, got %+v", p)
	}

	p, err := prefs.Save(ctx, "us")
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if p.Country != "US" || p.Units.DistanceUnit != Miles {
		t.Errorf("Save() = %+v", p)
	}

	raw, _, _ := slots.Get(ctx, CountrySlot)
	if raw != `{"country":"US"}` {
		t.Errorf("Stored preference = %q", raw)
	}

	if p := NewPreferences(slots, discardLogger()).Load(ctx); p.Country != "US" {
		t.Errorf("Load() = %+v, expected US", p)
	}

	if _, err := prefs.Save(ctx, "XX"); err == nil {
		t.Error("Expected unknown country to be rejected")
	}
	if p := prefs.Load(ctx); p.Country != "US" {
		t.Errorf("Rejected save must not change the preference, got %+v", p)
	}
}

func TestPreferences_Corrupt(t *testing.T) {
	prefs := NewPreferences(memorySlotsWith(CountrySlot, "US"), discardLogger())
	if p := prefs.Load(context.Background()); p.Country != DefaultCountry {
		t.Errorf("Expected default country for corrupt data, got %+v", p)
	}
}
