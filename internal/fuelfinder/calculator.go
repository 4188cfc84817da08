package fuelfinder

import (
	"math"
	"strconv"
	"strings"
)

// CostEstimate is the fuel needed and its price for a given distance.
type CostEstimate struct {
	FuelNeeded float64 `json:"fuelNeeded"`
	TotalCost  float64 `json:"totalCost"`
}

// RangeEstimate is the fuel a budget buys and the distance it covers.
type RangeEstimate struct {
	FuelAffordable float64 `json:"fuelAffordable"`
	Distance       float64 `json:"distance"`
}

// DistanceToCost parses its decimal inputs and estimates the cost of driving
// distance. It reports false when any input is not a positive number.
func DistanceToCost(distance, mileage, fuelRate string) (CostEstimate, bool) {
	return DistanceToCostValues(ParseDecimal(distance), ParseDecimal(mileage), ParseDecimal(fuelRate))
}

func DistanceToCostValues(distance, mileage, fuelRate float64) (CostEstimate, bool) {
	if !allPositive(distance, mileage, fuelRate) {
		return CostEstimate{}, false
	}
	fuelNeeded := distance / mileage
	return CostEstimate{FuelNeeded: fuelNeeded, TotalCost: fuelNeeded * fuelRate}, true
}

// BudgetToDistance parses its decimal inputs and estimates how far budget
// goes. It reports false when any input is not a positive number.
func BudgetToDistance(budget, mileage, fuelRate string) (RangeEstimate, bool) {
	return BudgetToDistanceValues(ParseDecimal(budget), ParseDecimal(mileage), ParseDecimal(fuelRate))
}

func BudgetToDistanceValues(budget, mileage, fuelRate float64) (RangeEstimate, bool) {
	if !allPositive(budget, mileage, fuelRate) {
		return RangeEstimate{}, false
	}
	fuelAffordable := budget / fuelRate
	return RangeEstimate{FuelAffordable: fuelAffordable, Distance: fuelAffordable * mileage}, true
}

// ParseDecimal parses a decimal string, returning NaN for anything that is
// not a number.
func ParseDecimal(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// NaN compares false against everything, so it fails the check below.
func allPositive(values ...float64) bool {
	for _, v := range values {
		if !(v > 0) || math.IsInf(v, 1) {
			return false
		}
	}
	return true
}
