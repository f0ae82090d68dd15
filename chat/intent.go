package chat

import "strings"

// Intent is the primary purpose of a client message.
type Intent string

const (
	IntentPropertySearch   Intent = "property_search"
	IntentROIAnalysis      Intent = "roi_analysis"
	IntentMarketTrends     Intent = "market_trends"
	IntentAreaComparison   Intent = "area_comparison"
	IntentInvestmentAdvice Intent = "investment_advice"
	IntentSpecificProperty Intent = "specific_property"
	IntentGeneralInquiry   Intent = "general_inquiry"
)

// intentKeywords is checked in order; the first intent with a matching keyword wins.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentPropertySearch, []string{"find", "search", "show", "recommend"}},
	{IntentROIAnalysis, []string{"roi", "return", "profit", "yield"}},
	{IntentMarketTrends, []string{"trend", "market", "forecast", "future"}},
	{IntentAreaComparison, []string{"compare", "vs", "versus", "better"}},
	{IntentInvestmentAdvice, []string{"advice", "should", "recommend", "suggest"}},
	{IntentSpecificProperty, []string{"property", "apartment", "villa", "penthouse"}},
}

// ClassifyIntent picks the intent of a message by keyword. Keywords match as
// substrings of the lowercased message.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, ik := range intentKeywords {
		for _, kw := range ik.keywords {
			if strings.Contains(lower, kw) {
				return ik.intent
			}
		}
	}
	return IntentGeneralInquiry
}
