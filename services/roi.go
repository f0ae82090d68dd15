package services

import (
	"strings"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
)

// HorizonYears is the projection period for rental income and capital growth.
const HorizonYears = 5

// Grade is an investment grade label such as "A+ EXCEPTIONAL".
type Grade string

const (
	GradeExceptional Grade = "A+ EXCEPTIONAL"
	GradeExcellent   Grade = "A EXCELLENT"
	GradeGood        Grade = "B+ GOOD"
	GradeFair        Grade = "B FAIR"
	GradeRisky       Grade = "C RISKY"
)

// Letter returns the leading grade code, e.g. "A+".
func (g Grade) Letter() string {
	if i := strings.IndexByte(string(g), ' '); i >= 0 {
		return string(g[:i])
	}
	return string(g)
}

// GradeFor maps a five-year ROI percentage onto its grade band.
// Bands are checked high to low with inclusive lower bounds.
func GradeFor(roi float64) Grade {
	switch {
	case roi >= 80:
		return GradeExceptional
	case roi >= 60:
		return GradeExcellent
	case roi >= 40:
		return GradeGood
	case roi >= 25:
		return GradeFair
	default:
		return GradeRisky
	}
}

// ROIProjector projects the total return of a listing over HorizonYears.
type ROIProjector struct {
	registry *market.Registry
}

func NewROIProjector(registry *market.Registry) *ROIProjector {
	return &ROIProjector{registry: registry}
}

// Project returns the ROI percentage and grade for a listing at the given market value.
// ROI combines the immediate price advantage with rental yield and growth over the horizon.
func (p *ROIProjector) Project(l models.PropertyListing, marketValue float64) (float64, Grade, error) {
	if l.Price <= 0 {
		return 0, "", &InvalidInputError{ListingID: l.ID, Field: "price", Value: l.Price, Reason: "must be positive"}
	}
	b := p.registry.ForListing(l)
	price := float64(l.Price)

	advantage := (marketValue - price) / price
	rental := b.RentalYield(l.PropertyType) * HorizonYears
	growth := b.Growth() * HorizonYears

	roi := (advantage + rental + growth) * 100
	return roi, GradeFor(roi), nil
}
