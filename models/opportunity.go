package models

// InvestmentOpportunity is a listing enriched with valuation, ROI, score, risk and insights.
// It is built once per listing and never mutated afterwards.
type InvestmentOpportunity struct {
	PropertyID   string       `json:"property_id"`
	Title        string       `json:"title"`
	Area         string       `json:"area"`
	City         string       `json:"city"`
	Country      string       `json:"country"`
	PropertyType PropertyType `json:"property_type"`
	Currency     string       `json:"currency"`
	Price        int64        `json:"price"`
	SizeSqft     float64      `json:"size_sqft"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	PricePerSqft float64      `json:"price_per_sqft"`

	MarketValue      float64  `json:"market_value"`
	ROIPercent       float64  `json:"roi_percent"`
	ROIPotential     string   `json:"roi_potential"`
	InvestmentGrade  string   `json:"investment_grade"`
	OpportunityScore float64  `json:"opportunity_score"`
	RiskLevel        string   `json:"risk_level"`
	KeyInsights      []string `json:"key_insights"`
}

// PortfolioSummary holds statistics computed over a collection of opportunities.
type PortfolioSummary struct {
	TotalOpportunities    int            `json:"total_opportunities"`
	AvgOpportunityScore   float64        `json:"avg_opportunity_score"`
	Top10PercentThreshold float64        `json:"top_10_percent_threshold"`
	AvgPrice              float64        `json:"avg_price"`
	MedianPrice           float64        `json:"median_price"`
	GradeDistribution     map[string]int `json:"grade_distribution"`
	AreaDistribution      map[string]int `json:"area_distribution"`
	Exceptional           int            `json:"exceptional_opportunities"`
	Excellent             int            `json:"excellent_opportunities"`
	Good                  int            `json:"good_opportunities"`
}
