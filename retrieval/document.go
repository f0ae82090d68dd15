package retrieval

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gulf-property-analyzer/models"
)

var printer = message.NewPrinter(language.English)

// ListingDocument renders a listing as a searchable document.
func ListingDocument(l models.PropertyListing) models.RetrievalDocument {
	ppsf, _ := l.PricePerSqft()
	return models.RetrievalDocument{
		ID:      documentID(l.ID),
		Content: describe(l.Title, l.Area, l.City, l.Price, l.Currency, l.PropertyType, l.Bedrooms, l.SizeSqft, ppsf),
		Metadata: models.DocumentMetadata{
			City:         l.City,
			Area:         l.Area,
			Price:        l.Price,
			Currency:     l.Currency,
			PropertyType: l.PropertyType,
			Bedrooms:     l.Bedrooms,
			SizeSqft:     l.SizeSqft,
			PricePerSqft: ppsf,
		},
	}
}

// OpportunityDocument renders an analyzed opportunity, including its grade, score and
// insights, as a searchable document. The score is carried in metadata for ranking.
func OpportunityDocument(o models.InvestmentOpportunity) models.RetrievalDocument {
	var b strings.Builder
	b.WriteString(describe(o.Title, o.Area, o.City, o.Price, o.Currency, o.PropertyType, o.Bedrooms, o.SizeSqft, o.PricePerSqft))
	printer.Fprintf(&b, "\nInvestment grade: %s", o.InvestmentGrade)
	printer.Fprintf(&b, "\nOpportunity score: %.1f/100", o.OpportunityScore)
	printer.Fprintf(&b, "\nROI potential: %s", o.ROIPotential)
	printer.Fprintf(&b, "\nRisk level: %s", o.RiskLevel)
	if len(o.KeyInsights) > 0 {
		b.WriteString("\nInsights: ")
		b.WriteString(strings.Join(o.KeyInsights, "; "))
	}

	score := o.OpportunityScore
	return models.RetrievalDocument{
		ID:      documentID(o.PropertyID),
		Content: b.String(),
		Metadata: models.DocumentMetadata{
			City:             o.City,
			Area:             o.Area,
			Price:            o.Price,
			Currency:         o.Currency,
			PropertyType:     o.PropertyType,
			Bedrooms:         o.Bedrooms,
			SizeSqft:         o.SizeSqft,
			PricePerSqft:     o.PricePerSqft,
			OpportunityScore: &score,
		},
	}
}

func describe(title, area, city string, price int64, currency string, t models.PropertyType,
	beds int, size, ppsf float64) string {
	if title == "" {
		title = "Property listing"
	}
	return printer.Sprintf("Property: %s\nLocation: %s, %s\nPrice: %d %s\nType: %s with %d bedrooms\nSize: %d sqft\nPrice per sqft: %.2f",
		title, area, city, price, currency, t, beds, int64(math.Round(size)), ppsf)
}

func documentID(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}
