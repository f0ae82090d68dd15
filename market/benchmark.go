// Package market holds the static reference data used to value listings:
// per-market price multipliers, rental yields, growth rates and fixed currency rates.
package market

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"gulf-property-analyzer/models"
)

const (
	// NeutralMultiplier is returned for any area or property type the benchmark does not list.
	NeutralMultiplier = 1.0
	// DefaultRentalYield applies to property types without a configured yield.
	DefaultRentalYield = 0.06
	// DefaultReferencePricePerSqft is the market-average unit price used for size efficiency.
	DefaultReferencePricePerSqft = 1000
)

// Benchmark is the reference data for one market. Lookups never fail: unknown keys
// fall back to neutral values.
type Benchmark struct {
	Market   string
	City     string
	Country  string
	Currency string

	BaselineUnitPrice     float64
	GrowthRate            float64
	DefaultYield          float64
	ReferencePricePerSqft float64

	AreaMultipliers map[string]float64
	TypeMultipliers map[models.PropertyType]float64
	RentalYields    map[models.PropertyType]float64

	// PrimeAreas and StrongAreas are disjoint location tiers used for insights.
	PrimeAreas  []string
	StrongAreas []string
}

// AreaMultiplier returns the price multiplier for an area, matching case-insensitively.
func (b *Benchmark) AreaMultiplier(area string) float64 {
	if m, ok := b.lookupArea(area); ok {
		return m
	}
	return NeutralMultiplier
}

// KnowsArea reports whether area has a configured multiplier.
func (b *Benchmark) KnowsArea(area string) bool {
	_, ok := b.lookupArea(area)
	return ok
}

func (b *Benchmark) lookupArea(area string) (float64, bool) {
	if m, ok := b.AreaMultipliers[area]; ok {
		return m, true
	}
	area = strings.TrimSpace(area)
	for name, m := range b.AreaMultipliers {
		if strings.EqualFold(name, area) {
			return m, true
		}
	}
	return 0, false
}

// TypeMultiplier returns the price multiplier for a property type.
func (b *Benchmark) TypeMultiplier(t models.PropertyType) float64 {
	if m, ok := b.TypeMultipliers[t]; ok {
		return m
	}
	return NeutralMultiplier
}

// KnowsType reports whether t has a configured multiplier.
func (b *Benchmark) KnowsType(t models.PropertyType) bool {
	_, ok := b.TypeMultipliers[t]
	return ok
}

// RentalYield returns the annual rental yield fraction for a property type.
func (b *Benchmark) RentalYield(t models.PropertyType) float64 {
	if y, ok := b.RentalYields[t]; ok {
		return y
	}
	if b.DefaultYield > 0 {
		return b.DefaultYield
	}
	return DefaultRentalYield
}

// Growth returns the annual capital growth fraction.
func (b *Benchmark) Growth() float64 { return b.GrowthRate }

// BaselinePrice returns the baseline price per square foot in the market currency.
func (b *Benchmark) BaselinePrice() float64 { return b.BaselineUnitPrice }

// ReferenceUnitPrice returns the market-average price per square foot.
func (b *Benchmark) ReferenceUnitPrice() float64 {
	if b.ReferencePricePerSqft > 0 {
		return b.ReferencePricePerSqft
	}
	return DefaultReferencePricePerSqft
}

// IsPrimeArea reports membership of the prime location tier.
func (b *Benchmark) IsPrimeArea(area string) bool { return containsFold(b.PrimeAreas, area) }

// IsStrongArea reports membership of the strong location tier.
func (b *Benchmark) IsStrongArea(area string) bool { return containsFold(b.StrongAreas, area) }

func containsFold(set []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range set {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Validate checks the benchmark is internally consistent.
func (b *Benchmark) Validate() error {
	var errs []string

	if b.Market == "" {
		errs = append(errs, "market key is required")
	}
	if b.BaselineUnitPrice <= 0 {
		errs = append(errs, "baseline_unit_price must be > 0")
	}
	if b.GrowthRate < -1 || b.GrowthRate > 1 {
		errs = append(errs, "growth_rate must be between -1 and 1")
	}
	if b.DefaultYield < 0 || b.DefaultYield > 1 {
		errs = append(errs, "default_yield must be between 0 and 1")
	}
	for area, m := range b.AreaMultipliers {
		if m <= 0 {
			errs = append(errs, fmt.Sprintf("area multiplier for %q must be > 0", area))
		}
	}
	for t, m := range b.TypeMultipliers {
		if m <= 0 {
			errs = append(errs, fmt.Sprintf("type multiplier for %q must be > 0", t))
		}
	}
	for t, y := range b.RentalYields {
		if y < 0 || y > 1 {
			errs = append(errs, fmt.Sprintf("rental yield for %q must be between 0 and 1", t))
		}
	}
	for _, a := range b.PrimeAreas {
		if containsFold(b.StrongAreas, a) {
			errs = append(errs, fmt.Sprintf("area %q is in both prime and strong tiers", a))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("market: benchmark %q invalid: %s", b.Market, strings.Join(errs, "; "))
	}
	return nil
}
