package quote

import (
	"fmt"
	"math"

	"github.com/avaluos-co/service-quote/internal/common/domain"
)

// Defaults of a fresh quoting session.
const (
	DefaultAreaM2 = 20.0
	DefaultFloors = 1
)

// Upper bounds that keep every estimate a finite peso amount.
const (
	MaxAreaM2     = 1_000_000.0
	MaxFloors     = 500
	MaxDistanceKm = 20_000.0
)

// PropertySpecification is an immutable value object describing the property to appraise.
type PropertySpecification struct {
	AreaM2 float64 `json:"area_m2"`
	Floors int     `json:"floors"`
}

// DefaultPropertySpecification is what a new session starts with.
func DefaultPropertySpecification() PropertySpecification {
	return PropertySpecification{AreaM2: DefaultAreaM2, Floors: DefaultFloors}
}

// Validate requires a positive area and at least one floor, both bounded.
func (p PropertySpecification) Validate() error {
	if math.IsNaN(p.AreaM2) || math.IsInf(p.AreaM2, 0) || p.AreaM2 <= 0 {
		return domain.NewValidationError(fmt.Sprintf("area must be a positive number, got %v", p.AreaM2))
	}
	if p.AreaM2 > MaxAreaM2 {
		return domain.NewValidationError(fmt.Sprintf("area must not exceed %.0f m2, got %v", MaxAreaM2, p.AreaM2))
	}
	if p.Floors < 1 || p.Floors > MaxFloors {
		return domain.NewValidationError(fmt.Sprintf("floors must be between 1 and %d, got %d", MaxFloors, p.Floors))
	}
	return nil
}

// ValidateDistance requires a finite, non-negative travel distance.
func ValidateDistance(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 || km > MaxDistanceKm {
		return domain.NewValidationError(fmt.Sprintf("distance_km must be between 0 and %.0f, got %v", MaxDistanceKm, km))
	}
	return nil
}

// PricingParams combines the property with a travel distance.
func (p PropertySpecification) PricingParams(distanceKm float64) PricingParams {
	return PricingParams{
		AreaM2:     p.AreaM2,
		Floors:     p.Floors,
		DistanceKm: distanceKm,
	}
}
