package services

import (
	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
)

// Valuer estimates the market value of a listing from its benchmark.
type Valuer struct {
	registry *market.Registry
}

// NewValuer creates a Valuer over the given benchmark registry.
func NewValuer(registry *market.Registry) *Valuer {
	return &Valuer{registry: registry}
}

// MarketValue returns baseline unit price × area multiplier × type multiplier × size.
func (v *Valuer) MarketValue(l models.PropertyListing) (float64, error) {
	if !l.ValidSize() {
		return 0, &InvalidInputError{ListingID: l.ID, Field: "size_sqft", Value: l.SizeSqft, Reason: "must be a finite positive number"}
	}
	b := v.registry.ForListing(l)
	unit := b.BaselinePrice() * b.AreaMultiplier(l.Area) * b.TypeMultiplier(l.PropertyType)
	return unit * l.SizeSqft, nil
}
