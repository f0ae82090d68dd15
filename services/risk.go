package services

import "gulf-property-analyzer/market"

// Risk level labels.
const (
	RiskPremium     = "MODERATE-HIGH (Premium Segment)"
	RiskLuxury      = "HIGH (Luxury Risk)"
	RiskStable      = "LOW-MODERATE (Stable)"
	RiskMidMarket   = "MODERATE (Mid-Market)"
	RiskOpportunity = "LOW (High Opportunity)"
	RiskEntryLevel  = "MODERATE (Entry Level)"
)

// Price tier boundaries in the reference currency.
const (
	luxuryPriceFloor    = 5_000_000
	midMarketPriceFloor = 2_000_000
)

// ClassifyRisk assigns a risk label from the price tier and the opportunity score.
// The price is converted to the reference currency before tiering.
func ClassifyRisk(price int64, currency string, score float64, rates market.Rates) string {
	p := rates.ToReference(float64(price), currency)

	switch {
	case p > luxuryPriceFloor:
		if score > 70 {
			return RiskPremium
		}
		return RiskLuxury
	case p > midMarketPriceFloor:
		if score > 60 {
			return RiskStable
		}
		return RiskMidMarket
	default:
		if score > 70 {
			return RiskOpportunity
		}
		return RiskEntryLevel
	}
}
