package fuelfinder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"
)

const (
	HistorySlot = "tripCalculations"

	// ISO-8601 in UTC with millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type CalculationType string

const (
	DistanceToCostCalc   CalculationType = "distanceToCost"
	BudgetToDistanceCalc CalculationType = "budgetToDistance"
)

type CalculationInputs struct {
	Distance    float64 `json:"distance,omitempty"`
	Mileage     float64 `json:"mileage"`
	FuelRate    float64 `json:"fuelRate"`
	Budget      float64 `json:"budget,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
}

// UnmarshalJSON accepts numeric inputs written either as JSON numbers or as
// the decimal strings the calculator form produces.
func (in *CalculationInputs) UnmarshalJSON(data []byte) error {
	var raw struct {
		Distance    flexFloat `json:"distance"`
		Mileage     flexFloat `json:"mileage"`
		FuelRate    flexFloat `json:"fuelRate"`
		Budget      flexFloat `json:"budget"`
		CountryCode string    `json:"countryCode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*in = CalculationInputs{
		Distance:    float64(raw.Distance),
		Mileage:     float64(raw.Mileage),
		FuelRate:    float64(raw.FuelRate),
		Budget:      float64(raw.Budget),
		CountryCode: raw.CountryCode,
	}
	return nil
}

// flexFloat decodes a JSON number or a numeric string. Blank or non-numeric
// strings decode to zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v := ParseDecimal(s)
		if math.IsNaN(v) {
			v = 0
		}
		*f = flexFloat(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("error decoding number %s: %w", data, err)
	}
	*f = flexFloat(v)
	return nil
}

// CalculationOutputs holds FuelNeeded/TotalCost for distanceToCost and
// FuelAffordable/Distance for budgetToDistance.
type CalculationOutputs struct {
	FuelNeeded     float64 `json:"fuelNeeded,omitempty"`
	TotalCost      float64 `json:"totalCost,omitempty"`
	FuelAffordable float64 `json:"fuelAffordable,omitempty"`
	Distance       float64 `json:"distance,omitempty"`
}

// TripCalculation is a saved calculator result. Timestamp identifies it
// within the history.
type TripCalculation struct {
	Type      CalculationType    `json:"type"`
	Timestamp string             `json:"timestamp"`
	Inputs    CalculationInputs  `json:"inputs"`
	Outputs   CalculationOutputs `json:"outputs"`
}

func (c TripCalculation) distance() float64 {
	if c.Type == BudgetToDistanceCalc {
		return c.Outputs.Distance
	}
	return c.Inputs.Distance
}

func (c TripCalculation) cost() float64 {
	if c.Type == BudgetToDistanceCalc {
		return c.Inputs.Budget
	}
	return c.Outputs.TotalCost
}

// WeekdayTotal is the sum of a quantity over every calculation made on Day.
type WeekdayTotal struct {
	Day   time.Weekday `json:"day"`
	Total float64      `json:"total"`
}

// History is the ordered, most recent first, list of saved calculations. It
// is the only writer of HistorySlot.
type History struct {
	mu    sync.Mutex
	slots SlotStore
	log   *slog.Logger
	calcs []TripCalculation
	last  time.Time
	now   func() time.Time
	loc   *time.Location
}

func NewHistory(slots SlotStore, logger *slog.Logger) *History {
	return &History{
		slots: slots,
		log:   logger,
		now:   time.Now,
		loc:   time.Local,
	}
}

// SetLocation sets the time zone used to derive weekdays for aggregates.
func (h *History) SetLocation(loc *time.Location) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loc = loc
}

// Load reads the persisted history. Missing or unreadable data yields an
// empty history.
func (h *History) Load(ctx context.Context) []TripCalculation {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calcs = nil
	raw, found, err := h.slots.Get(ctx, HistorySlot)
	switch {
	case err != nil:
		h.log.Warn("Error reading calculation history", "error", err)
	case !found:
		h.log.Debug("No calculation history stored")
	default:
		var calcs []TripCalculation
		if err := json.Unmarshal([]byte(raw), &calcs); err != nil {
			h.log.Warn("Ignoring corrupt calculation history", "error", err)
		} else {
			h.calcs = calcs
		}
	}

	for _, c := range h.calcs {
		if ts, err := time.Parse(time.RFC3339Nano, c.Timestamp); err == nil && ts.After(h.last) {
			h.last = ts
		}
	}

	return slices.Clone(h.calcs)
}

// List returns the calculations, most recent first.
func (h *History) List() []TripCalculation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.calcs)
}

// ErrDuplicateTimestamp is returned by Append when the history already holds
// a calculation with the same timestamp.
var ErrDuplicateTimestamp = errors.New("calculation timestamp already in history")

// Append puts calc at the head of the history and persists the list.
func (h *History) Append(ctx context.Context, calc TripCalculation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prepend(ctx, calc)
}

// Record stamps a new calculation with a timestamp unique within the history
// and appends it.
func (h *History) Record(ctx context.Context, typ CalculationType, inputs CalculationInputs, outputs CalculationOutputs) (TripCalculation, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	calc := TripCalculation{
		Type:      typ,
		Timestamp: h.nextTimestamp(),
		Inputs:    inputs,
		Outputs:   outputs,
	}
	if err := h.prepend(ctx, calc); err != nil {
		return TripCalculation{}, err
	}
	return calc, nil
}

func (h *History) prepend(ctx context.Context, calc TripCalculation) error {
	if h.indexOf(calc.Timestamp) >= 0 {
		return fmt.Errorf("error appending calculation %s: %w", calc.Timestamp, ErrDuplicateTimestamp)
	}

	next := make([]TripCalculation, 0, len(h.calcs)+1)
	next = append(next, calc)
	next = append(next, h.calcs...)
	if err := h.persist(ctx, next); err != nil {
		return err
	}

	if ts, err := time.Parse(time.RFC3339Nano, calc.Timestamp); err == nil && ts.After(h.last) {
		h.last = ts
	}
	return nil
}

func (h *History) indexOf(timestamp string) int {
	return slices.IndexFunc(h.calcs, func(c TripCalculation) bool {
		return c.Timestamp == timestamp
	})
}

// Remove deletes the calculation stamped timestamp. Unknown timestamps leave
// the history untouched.
func (h *History) Remove(ctx context.Context, timestamp string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(timestamp)
	if idx < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(h.calcs), idx, idx+1)
	return h.persist(ctx, next)
}

func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.persist(ctx, []TripCalculation{})
}

// WeeklyDistance sums the distance of every calculation by weekday, Sunday
// first. All stored history is counted, not just the current week.
func (h *History) WeeklyDistance() []WeekdayTotal {
	totals := h.weekly(TripCalculation.distance)
	out := make([]WeekdayTotal, 0, len(totals))
	for day, total := range totals {
		out = append(out, WeekdayTotal{Day: time.Weekday(day), Total: total})
	}
	return out
}

// WeeklyBudget sums the cost of every calculation by weekday, Sunday first,
// leaving out weekdays without spending.
func (h *History) WeeklyBudget() []WeekdayTotal {
	totals := h.weekly(TripCalculation.cost)
	var out []WeekdayTotal
	for day, total := range totals {
		if total != 0 {
			out = append(out, WeekdayTotal{Day: time.Weekday(day), Total: total})
		}
	}
	return out
}

func (h *History) weekly(value func(TripCalculation) float64) [7]float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	var totals [7]float64
	for _, c := range h.calcs {
		ts, err := time.Parse(time.RFC3339Nano, c.Timestamp)
		if err != nil {
			continue
		}
		totals[ts.In(h.loc).Weekday()] += value(c)
	}
	return totals
}

func (h *History) persist(ctx context.Context, calcs []TripCalculation) error {
	data, err := json.Marshal(calcs)
	if err != nil {
		return fmt.Errorf("error marshaling calculation history: %w", err)
	}
	if err := h.slots.Put(ctx, HistorySlot, string(data)); err != nil {
		return fmt.Errorf("error saving calculation history: %w", err)
	}
	h.calcs = calcs
	return nil
}

// nextTimestamp must be called with h.mu held.
func (h *History) nextTimestamp() string {
	ts := h.now().UTC().Truncate(time.Millisecond)
	if !ts.After(h.last) {
		ts = h.last.Add(time.Millisecond)
	}
	h.last = ts
	return ts.UTC().Format(timestampLayout)
}
