package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReport(t *testing.T) {
	opps := samplePortfolio()
	for i := range opps {
		opps[i].Title = "Listing " + opps[i].PropertyID
		opps[i].Currency = "AED"
		opps[i].ROIPotential = "42.0%"
		opps[i].KeyInsights = []string{"MARKET PRICE: Aligned with current valuations"}
	}
	ranked := Rank(opps)

	var buf bytes.Buffer
	err := RenderReport(&buf, ranked, Aggregate(opps), ReportOptions{
		TopN:        2,
		GeneratedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "Generated: 2025-03-01 09:30:00")
	assert.Contains(t, out, "Total Properties Analyzed: 6")
	assert.Contains(t, out, "Exceptional Opportunities (80+ Score): 2")
	assert.Contains(t, out, "Average Property Price: 3,500,000")
	assert.Contains(t, out, "TOP 2 INVESTMENT OPPORTUNITIES")
	assert.Contains(t, out, "#1 - Listing a")
	assert.Contains(t, out, "#2 - Listing e")
	assert.NotContains(t, out, "#3 -")
	assert.Contains(t, out, "Price: AED 1,000,000")
	assert.Contains(t, out, "* Grade A+: 2 properties")

	// areas with equal counts are ordered by name
	downtown := strings.Index(out, "* Downtown Dubai: 2 properties")
	jbr := strings.Index(out, "* JBR: 2 properties")
	difc := strings.Index(out, "* DIFC: 1 properties")
	require.True(t, downtown >= 0 && jbr >= 0 && difc >= 0)
	assert.Less(t, downtown, jbr)
	assert.Less(t, jbr, difc)
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, nil, Aggregate(nil), ReportOptions{}))
	assert.Contains(t, buf.String(), "Total Properties Analyzed: 0")
	assert.Contains(t, buf.String(), "TOP 20 INVESTMENT OPPORTUNITIES")
}
