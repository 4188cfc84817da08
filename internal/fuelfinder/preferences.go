package fuelfinder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const CountrySlot = "country-preference"

// Profile is the user's country selection together with its units. It is
// passed explicitly to the components that need units.
type Profile struct {
	Country string
	Units   UnitProfile
}

// ProfileFor returns the profile of country, falling back to DefaultCountry
// for unknown codes.
func ProfileFor(country string) Profile {
	code := strings.ToUpper(strings.TrimSpace(country))
	units, ok := LookupUnits(code)
	if !ok {
		code = DefaultCountry
		units, _ = LookupUnits(code)
	}
	return Profile{Country: code, Units: units}
}

type countryPreference struct {
	Country string `json:"country"`
}

// Preferences loads and saves the selected country.
type Preferences struct {
	slots SlotStore
	log   *slog.Logger
}

func NewPreferences(slots SlotStore, logger *slog.Logger) *Preferences {
	return &Preferences{slots: slots, log: logger}
}

// Load returns the saved profile, or the default one when nothing usable is
// stored.
func (p *Preferences) Load(ctx context.Context) Profile {
	raw, found, err := p.slots.Get(ctx, CountrySlot)
	if err != nil {
		p.log.Warn("Error reading country preference", "error", err)
		return ProfileFor(DefaultCountry)
	}
	if !found {
		return ProfileFor(DefaultCountry)
	}

	var pref countryPreference
	if err := json.Unmarshal([]byte(raw), &pref); err != nil {
		p.log.Warn("Ignoring corrupt country preference", "error", err)
		return ProfileFor(DefaultCountry)
	}
	return ProfileFor(pref.Country)
}

// Save stores country. Unknown country codes are rejected.
func (p *Preferences) Save(ctx context.Context, country string) (Profile, error) {
	code := strings.ToUpper(strings.TrimSpace(country))
	if _, ok := LookupUnits(code); !ok {
		return Profile{}, fmt.Errorf("unknown country code: %q", country)
	}

	data, err := json.Marshal(countryPreference{Country: code})
	if err != nil {
		return Profile{}, fmt.Errorf("error marshaling country preference: %w", err)
	}
	if err := p.slots.Put(ctx, CountrySlot, string(data)); err != nil {
		return Profile{}, fmt.Errorf("error saving country preference: %w", err)
	}
	return ProfileFor(code), nil
}
