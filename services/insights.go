package services

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
)

// MaxInsights is the number of insight lines kept per opportunity.
const MaxInsights = 4

const (
	undervaluedDelta = 200_000
	fairPriceDelta   = 50_000

	exceptionalROI = 70
	strongROI      = 50

	sizeEfficiencyRatio = 0.9
)

// InsightGenerator produces short human-readable observations about an opportunity.
type InsightGenerator struct {
	registry *market.Registry
	printer  *message.Printer
}

func NewInsightGenerator(registry *market.Registry) *InsightGenerator {
	return &InsightGenerator{
		registry: registry,
		printer:  message.NewPrinter(language.English),
	}
}

// Generate returns at most MaxInsights lines in fixed precedence: price, location,
// property type, ROI, size efficiency.
func (g *InsightGenerator) Generate(l models.PropertyListing, marketValue, roi float64) []string {
	b := g.registry.ForListing(l)
	currency := l.Currency
	if currency == "" {
		currency = b.Currency
	}

	insights := make([]string, 0, MaxInsights+1)

	delta := marketValue - float64(l.Price)
	switch {
	case delta > undervaluedDelta:
		insights = append(insights, g.printer.Sprintf("UNDERVALUED: %d %s below market value", roundInt(delta), currency))
	case delta > fairPriceDelta:
		insights = append(insights, g.printer.Sprintf("FAIR PRICE: %d %s below market", roundInt(delta), currency))
	default:
		insights = append(insights, "MARKET PRICE: Aligned with current valuations")
	}

	switch {
	case b.IsPrimeArea(l.Area):
		insights = append(insights, fmt.Sprintf("PRIME LOCATION: %s offers premium appreciation", l.Area))
	case b.IsStrongArea(l.Area):
		insights = append(insights, fmt.Sprintf("STRONG LOCATION: %s shows solid growth potential", l.Area))
	}

	switch l.PropertyType {
	case models.Penthouse:
		insights = append(insights, "LUXURY SEGMENT: High rental yields & appreciation")
	case models.Villa:
		insights = append(insights, "FAMILY APPEAL: Strong rental demand & resale value")
	}

	switch {
	case roi > exceptionalROI:
		insights = append(insights, fmt.Sprintf("EXCEPTIONAL ROI: %.1f%% projected %d-year returns", roi, HorizonYears))
	case roi > strongROI:
		insights = append(insights, fmt.Sprintf("STRONG ROI: %.1f%% projected returns", roi))
	}

	ref := b.ReferenceUnitPrice()
	if ppsf, ok := l.PricePerSqft(); ok && ppsf < ref*sizeEfficiencyRatio {
		insights = append(insights, fmt.Sprintf("SIZE EFFICIENCY: %.0f %s/sqft vs %.0f market avg", ppsf, currency, ref))
	}

	if len(insights) > MaxInsights {
		insights = insights[:MaxInsights]
	}
	return insights
}

func roundInt(f float64) int64 {
	return int64(math.Round(f))
}
