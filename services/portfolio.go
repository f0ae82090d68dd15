package services

import (
	"sort"
	"strings"

	"gulf-property-analyzer/models"
)

// Score tier floors for the summary counts.
const (
	ExceptionalScore = 80.0
	ExcellentScore   = 60.0
	GoodScore        = 40.0
)

// Ungraded is the grade histogram key for opportunities without a grade.
const Ungraded = "ungraded"

// Rank returns a copy of opps ordered by opportunity score, highest first.
// Equal scores keep their input order.
func Rank(opps []models.InvestmentOpportunity) []models.InvestmentOpportunity {
	ranked := make([]models.InvestmentOpportunity, len(opps))
	copy(ranked, opps)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].OpportunityScore > ranked[j].OpportunityScore
	})
	return ranked
}

// Aggregate computes portfolio statistics over opps without modifying them.
// An empty input yields zero statistics and empty histograms.
func Aggregate(opps []models.InvestmentOpportunity) models.PortfolioSummary {
	summary := models.PortfolioSummary{
		TotalOpportunities: len(opps),
		GradeDistribution:  make(map[string]int),
		AreaDistribution:   make(map[string]int),
	}
	if len(opps) == 0 {
		return summary
	}

	scores := make([]float64, len(opps))
	prices := make([]float64, len(opps))
	var scoreSum, priceSum float64

	for i, o := range opps {
		scores[i] = o.OpportunityScore
		prices[i] = float64(o.Price)
		scoreSum += o.OpportunityScore
		priceSum += float64(o.Price)

		letter := Grade(strings.TrimSpace(o.InvestmentGrade)).Letter()
		if letter == "" {
			letter = Ungraded
		}
		summary.GradeDistribution[letter]++
		summary.AreaDistribution[o.Area]++

		switch s := o.OpportunityScore; {
		case s >= ExceptionalScore:
			summary.Exceptional++
		case s >= ExcellentScore:
			summary.Excellent++
		case s >= GoodScore:
			summary.Good++
		}
	}

	n := float64(len(opps))
	summary.AvgOpportunityScore = scoreSum / n
	summary.AvgPrice = priceSum / n
	summary.MedianPrice = median(prices)

	sort.Float64s(scores)
	summary.Top10PercentThreshold = scores[int(n*0.9)]

	return summary
}

// median sorts values in place. Even-length input averages the two middle values.
func median(values []float64) float64 {
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}
