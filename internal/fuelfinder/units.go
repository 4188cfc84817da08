package fuelfinder

import "strings"

// DefaultCountry is used when no preference has been saved yet.
const DefaultCountry = "IN"

// UnitProfile describes the measurement units used in a country.
type UnitProfile struct {
	Name           string       `json:"name"`
	DistanceUnit   DistanceUnit `json:"distance"`
	VolumeUnit     string       `json:"volume"`
	CurrencySymbol string       `json:"currency"`
	MileageUnit    string       `json:"mileage"`
}

var unitTable = map[string]UnitProfile{
	"US": {Name: "United States", DistanceUnit: Miles, VolumeUnit: "gallons", CurrencySymbol: "$", MileageUnit: "mpg"},
	"IN": {Name: "India", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "₹", MileageUnit: "km/L"},
	"UK": {Name: "United Kingdom", DistanceUnit: Miles, VolumeUnit: "L", CurrencySymbol: "£", MileageUnit: "mpl"},
	"CA": {Name: "Canada", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "CAD", MileageUnit: "km/L"},
	"AU": {Name: "Australia", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "AUD", MileageUnit: "km/L"},
	"DE": {Name: "Germany", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "€", MileageUnit: "km/L"},
	"NO": {Name: "Norway", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "NOK", MileageUnit: "km/L"},
	"JP": {Name: "Japan", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "¥", MileageUnit: "km/L"},
	"CN": {Name: "China", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "¥", MileageUnit: "km/L"},
	"SA": {Name: "Saudi Arabia", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "SAR", MileageUnit: "km/L"},
	"AE": {Name: "UAE", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "AED", MileageUnit: "km/L"},
	"LK": {Name: "Sri Lanka", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "LKR", MileageUnit: "km/L"},
	"NG": {Name: "Nigeria", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "₦", MileageUnit: "km/L"},
	"IR": {Name: "Iran", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "rial", MileageUnit: "km/L"},
	"VE": {Name: "Venezuela", DistanceUnit: Kilometers, VolumeUnit: "L", CurrencySymbol: "Bs", MileageUnit: "km/L"},
}

// LookupUnits returns the unit profile for a country code. Codes are matched
// case-insensitively.
func LookupUnits(country string) (UnitProfile, bool) {
	p, ok := unitTable[strings.ToUpper(strings.TrimSpace(country))]
	return p, ok
}

// CountryCodes returns every country code known to the unit table.
func CountryCodes() []string {
	codes := make([]string, 0, len(unitTable))
	for code := range unitTable {
		codes = append(codes, code)
	}
	return codes
}
