package services

import (
	"math"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
)

// Component caps of the opportunity score. They sum to MaxScore.
const (
	PriceEfficiencyCap = 40.0
	ROICap             = 35.0
	LocationCap        = 15.0
	TypeCap            = 10.0
	MaxScore           = 100.0

	roiWeight      = 0.35
	locationWeight = 0.6
)

// ScoreBreakdown is the per-component contribution to an opportunity score.
type ScoreBreakdown struct {
	PriceEfficiency float64
	ROI             float64
	Location        float64
	Type            float64
}

// Total returns the clamped sum of the components.
func (s ScoreBreakdown) Total() float64 {
	return clamp(s.PriceEfficiency+s.ROI+s.Location+s.Type, 0, MaxScore)
}

// Scorer computes the 0–100 opportunity score.
type Scorer struct {
	registry *market.Registry
}

func NewScorer(registry *market.Registry) *Scorer {
	return &Scorer{registry: registry}
}

// Score returns the opportunity score for a listing.
func (s *Scorer) Score(l models.PropertyListing, marketValue, roi float64) float64 {
	return s.Breakdown(l, marketValue, roi).Total()
}

// Breakdown returns each score component, floored at zero and capped.
func (s *Scorer) Breakdown(l models.PropertyListing, marketValue, roi float64) ScoreBreakdown {
	b := s.registry.ForListing(l)

	var efficiency float64
	if l.Price > 0 {
		price := float64(l.Price)
		efficiency = (marketValue - price) / price * 100
	}

	return ScoreBreakdown{
		PriceEfficiency: clamp(efficiency, 0, PriceEfficiencyCap),
		ROI:             clamp(roi*roiWeight, 0, ROICap),
		Location:        clamp((b.AreaMultiplier(l.Area)-1)*100*locationWeight, 0, LocationCap),
		Type:            clamp((b.TypeMultiplier(l.PropertyType)-1)*100, 0, TypeCap),
	}
}

// clamp bounds v to [lo, hi]. NaN and infinities become lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
