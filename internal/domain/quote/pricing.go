package quote

import (
	"fmt"
	"math"
)

// PricePerKm is the travel surcharge in COP per driven kilometre.
const PricePerKm = 15000.0

// PricePoint is one breakpoint of the area pricing curve.
type PricePoint struct {
	AreaM2 float64 `json:"area_m2"`
	Price  float64 `json:"price"`
}

// DefaultBreakpoints is the hand-authored appraisal fee table in COP.
var DefaultBreakpoints = []PricePoint{
	{AreaM2: 20, Price: 100000},
	{AreaM2: 40, Price: 150000},
	{AreaM2: 60, Price: 200000},
	{AreaM2: 80, Price: 250000},
	{AreaM2: 100, Price: 300000},
	{AreaM2: 120, Price: 350000},
}

// BreakpointTable is a piecewise-linear pricing curve with strictly increasing areas.
type BreakpointTable struct {
	points []PricePoint
}

// NewBreakpointTable validates and copies points.
func NewBreakpointTable(points []PricePoint) (BreakpointTable, error) {
	if len(points) < 2 {
		return BreakpointTable{}, fmt.Errorf("breakpoint table needs at least 2 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].AreaM2 <= points[i-1].AreaM2 {
			return BreakpointTable{}, fmt.Errorf("breakpoint areas must be strictly increasing: %v after %v",
				points[i].AreaM2, points[i-1].AreaM2)
		}
	}
	cp := make([]PricePoint, len(points))
	copy(cp, points)
	return BreakpointTable{points: cp}, nil
}

// MustBreakpointTable is NewBreakpointTable for package-level tables known to be valid.
func MustBreakpointTable(points []PricePoint) BreakpointTable {
	t, err := NewBreakpointTable(points)
	if err != nil {
		panic(err)
	}
	return t
}

// Points returns a copy of the breakpoints.
func (t BreakpointTable) Points() []PricePoint {
	cp := make([]PricePoint, len(t.points))
	copy(cp, t.points)
	return cp
}

// PriceForArea interpolates linearly between the bracketing breakpoints.
// Outside the table the nearest edge segment is extended.
func (t BreakpointTable) PriceForArea(area float64) float64 {
	n := len(t.points)
	switch {
	case area <= t.points[0].AreaM2:
		return pointOnSegment(t.points[0], t.points[1], area)
	case area >= t.points[n-1].AreaM2:
		return pointOnSegment(t.points[n-2], t.points[n-1], area)
	}

	for i := 0; i < n-1; i++ {
		lower, upper := t.points[i], t.points[i+1]
		if area >= lower.AreaM2 && area <= upper.AreaM2 {
			return pointOnSegment(lower, upper, area)
		}
	}
	return t.points[n-1].Price
}

func pointOnSegment(lower, upper PricePoint, area float64) float64 {
	if area == lower.AreaM2 {
		return lower.Price
	}
	if area == upper.AreaM2 {
		return upper.Price
	}
	slope := (upper.Price - lower.Price) / (upper.AreaM2 - lower.AreaM2)
	return lower.Price + slope*(area-lower.AreaM2)
}

// PricingStrategy defines the interface for calculating appraisal prices.
type PricingStrategy interface {
	// Calculate returns the price breakdown for the given parameters.
	Calculate(params PricingParams) Estimate
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	AreaM2     float64
	Floors     int
	DistanceKm float64
}

// Estimate is the price breakdown of one quote, in COP.
type Estimate struct {
	BasePrice   float64 `json:"base_price"`
	FloorsPrice float64 `json:"floors_price"`
	TravelCost  float64 `json:"travel_cost"`
	Total       float64 `json:"total"`
}

// TotalCOP returns the total rounded to whole pesos.
func (e Estimate) TotalCOP() int64 {
	return int64(math.Round(e.Total))
}

// StandardPricingStrategy prices by area from a breakpoint table, multiplies by
// floors and adds a per-kilometre travel surcharge.
type StandardPricingStrategy struct {
	table      BreakpointTable
	pricePerKm float64
}

// NewStandardPricingStrategy creates a strategy over DefaultBreakpoints and PricePerKm.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return NewPricingStrategy(MustBreakpointTable(DefaultBreakpoints), PricePerKm)
}

// NewPricingStrategy creates a strategy over a custom table and rate.
func NewPricingStrategy(table BreakpointTable, pricePerKm float64) *StandardPricingStrategy {
	return &StandardPricingStrategy{table: table, pricePerKm: pricePerKm}
}

// Table returns the strategy's breakpoint table.
func (s *StandardPricingStrategy) Table() BreakpointTable { return s.table }

// PricePerKm returns the travel rate.
func (s *StandardPricingStrategy) PricePerKm() float64 { return s.pricePerKm }

// Calculate computes the estimate. It never rejects input:
//
//	total = basePrice(area) × floors + distanceKm × pricePerKm
func (s *StandardPricingStrategy) Calculate(params PricingParams) Estimate {
	base := s.table.PriceForArea(params.AreaM2)
	floorsPrice := base * float64(params.Floors)
	travel := params.DistanceKm * s.pricePerKm

	return Estimate{
		BasePrice:   base,
		FloorsPrice: floorsPrice,
		TravelCost:  travel,
		Total:       floorsPrice + travel,
	}
}
