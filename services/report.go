package services

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gulf-property-analyzer/models"
)

// ReportOptions controls RenderReport output.
type ReportOptions struct {
	TopN        int
	GeneratedAt time.Time
}

// RenderReport writes the plain-text investment report: executive summary, the top
// ranked opportunities, then area and grade breakdowns. ranked must already be sorted.
func RenderReport(w io.Writer, ranked []models.InvestmentOpportunity, s models.PortfolioSummary, opts ReportOptions) error {
	if opts.TopN <= 0 {
		opts.TopN = 20
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	top := ranked
	if len(top) > opts.TopN {
		top = top[:opts.TopN]
	}

	sep := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 40)
	bw := bufio.NewWriter(w)
	p := message.NewPrinter(language.English)

	p.Fprintf(bw, "%s\n", sep)
	p.Fprintf(bw, "REAL ESTATE INVESTMENT ANALYSIS REPORT\n")
	p.Fprintf(bw, "%s\n", sep)
	p.Fprintf(bw, "Generated: %s\n", opts.GeneratedAt.Format("2006-01-02 15:04:05"))
	p.Fprintf(bw, "Total Properties Analyzed: %d\n\n", s.TotalOpportunities)

	// Executive summary
	p.Fprintf(bw, "EXECUTIVE SUMMARY\n%s\n", thin)
	p.Fprintf(bw, "Exceptional Opportunities (80+ Score): %d\n", s.Exceptional)
	p.Fprintf(bw, "Excellent Opportunities (60-79 Score): %d\n", s.Excellent)
	p.Fprintf(bw, "Good Opportunities (40-59 Score): %d\n", s.Good)
	p.Fprintf(bw, "Average Opportunity Score: %.1f/100\n", s.AvgOpportunityScore)
	p.Fprintf(bw, "Average Property Price: %d\n", roundInt(s.AvgPrice))
	p.Fprintf(bw, "Median Property Price: %d\n\n", roundInt(s.MedianPrice))

	// Top opportunities
	p.Fprintf(bw, "TOP %d INVESTMENT OPPORTUNITIES\n%s\n", opts.TopN, sep)
	for i, o := range top {
		p.Fprintf(bw, "\n#%d - %s\n", i+1, truncate(o.Title, 70))
		p.Fprintf(bw, "Location: %s\n", location(o))
		p.Fprintf(bw, "Price: %s %d (%d/sqft)\n", o.Currency, o.Price, roundInt(o.PricePerSqft))
		p.Fprintf(bw, "Size: %d sqft | %dBR\n", roundInt(o.SizeSqft), o.Bedrooms)
		p.Fprintf(bw, "Opportunity Score: %.1f/100\n", o.OpportunityScore)
		p.Fprintf(bw, "ROI Potential: %s\n", o.ROIPotential)
		p.Fprintf(bw, "Investment Grade: %s\n", o.InvestmentGrade)
		p.Fprintf(bw, "Risk Level: %s\n", o.RiskLevel)
		p.Fprintf(bw, "Key Insights:\n")
		for _, insight := range o.KeyInsights {
			p.Fprintf(bw, "   * %s\n", insight)
		}
		p.Fprintf(bw, "%s\n", strings.Repeat("-", 60))
	}

	// Area breakdown, by count descending
	p.Fprintf(bw, "\nMARKET ANALYSIS BY AREA\n%s\n", thin)
	for _, ac := range sortedCounts(s.AreaDistribution) {
		p.Fprintf(bw, "* %s: %d properties\n", ac.key, ac.count)
	}

	// Grade breakdown, by grade code
	p.Fprintf(bw, "\nINVESTMENT GRADE DISTRIBUTION\n%s\n", thin)
	grades := make([]string, 0, len(s.GradeDistribution))
	for g := range s.GradeDistribution {
		grades = append(grades, g)
	}
	sort.Strings(grades)
	for _, g := range grades {
		p.Fprintf(bw, "* Grade %s: %d properties\n", g, s.GradeDistribution[g])
	}
	p.Fprintf(bw, "\n%s\n", sep)

	if err := bw.Flush(); err != nil {
		return eris.Wrap(err, "services: write report")
	}
	return nil
}

type keyCount struct {
	key   string
	count int
}

// sortedCounts orders a histogram by count descending, then key.
func sortedCounts(m map[string]int) []keyCount {
	out := make([]keyCount, 0, len(m))
	for k, c := range m {
		out = append(out, keyCount{k, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].key < out[j].key
	})
	return out
}

func location(o models.InvestmentOpportunity) string {
	if o.City == "" || strings.EqualFold(o.City, o.Area) {
		return o.Area
	}
	return o.Area + ", " + o.City
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
