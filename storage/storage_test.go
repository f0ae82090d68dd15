package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulf-property-analyzer/models"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/utils"
)

func newTestSQLiteStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"), utils.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleOpportunities() []models.InvestmentOpportunity {
	return []models.InvestmentOpportunity{
		{
			PropertyID: "BAY-1", Title: "1BR Apartment in Downtown Dubai", Area: "Downtown Dubai",
			City: "Dubai", Country: "UAE", PropertyType: models.Apartment, Currency: "AED",
			Price: 1_000_000, SizeSqft: 1000, Bedrooms: 1, PricePerSqft: 1000,
			MarketValue: 1_187_500, ROIPercent: 91.25, ROIPotential: "91.2%",
			InvestmentGrade: "A+ EXCEPTIONAL", OpportunityScore: 65.69, RiskLevel: "LOW-MEDIUM (Entry Level)",
			KeyInsights: []string{"FAIR PRICE: 187,500 AED below market", "PRIME LOCATION: Downtown Dubai offers premium appreciation"},
		},
		{
			PropertyID: "BAY-2", Title: "4BR Villa in Arabian Ranches", Area: "Arabian Ranches",
			City: "Dubai", Country: "UAE", PropertyType: models.Villa, Currency: "AED",
			Price: 4_200_000, SizeSqft: 4200, Bedrooms: 4, PricePerSqft: 1000,
			MarketValue: 4_000_000, ROIPercent: 30, ROIPotential: "30.0%",
			InvestmentGrade: "B FAIR", OpportunityScore: 71.5, RiskLevel: "MEDIUM (Mid-Market)",
		},
	}
}

func TestSQLStoreOpportunitiesRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteOpportunities(ctx, sampleOpportunities()))

	got, err := s.FetchOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// highest score first
	assert.Equal(t, "BAY-2", got[0].PropertyID)
	assert.Equal(t, models.Villa, got[0].PropertyType)
	assert.Empty(t, got[0].KeyInsights)

	assert.Equal(t, "BAY-1", got[1].PropertyID)
	assert.Equal(t, int64(1_000_000), got[1].Price)
	assert.InDelta(t, 91.25, got[1].ROIPercent, 1e-9)
	assert.Equal(t, sampleOpportunities()[0].KeyInsights, got[1].KeyInsights)
}

func TestSQLStoreWriteReplacesPreviousRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteOpportunities(ctx, sampleOpportunities()))
	require.NoError(t, s.WriteOpportunities(ctx, sampleOpportunities()[:1]))

	got, err := s.FetchOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BAY-1", got[0].PropertyID)
}

func TestSQLStoreEmptyWriteClearsPreviousRun(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteOpportunities(ctx, sampleOpportunities()))
	require.NoError(t, s.WriteOpportunities(ctx, nil))

	got, err := s.FetchOpportunities(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestSQLStoreDuplicateIDsKeepFirst(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	opps := sampleOpportunities()
	dup := opps[0]
	dup.Title = "duplicate"
	require.NoError(t, s.WriteOpportunities(ctx, append(opps, dup)))

	got, err := s.FetchOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1BR Apartment in Downtown Dubai", got[1].Title)
}

func TestSQLStoreBatchesLargeWrites(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	base := sampleOpportunities()[0]
	opps := make([]models.InvestmentOpportunity, 0, 120)
	for i := 0; i < 120; i++ {
		o := base
		o.PropertyID = fmt.Sprintf("BAY-%03d", i)
		opps = append(opps, o)
	}
	require.NoError(t, s.WriteOpportunities(ctx, opps))

	got, err := s.FetchOpportunities(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 120)
}

func TestSQLStoreSummaries(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, ok, err := s.LatestSummary(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	first := services.Aggregate(sampleOpportunities())
	require.NoError(t, s.WriteSummary(ctx, first))

	second := services.Aggregate(sampleOpportunities()[:1])
	require.NoError(t, s.WriteSummary(ctx, second))

	got, ok, err := s.LatestSummary(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second, got)
}

func TestDialectPlaceholders(t *testing.T) {
	assert.Equal(t, "$3", Postgres.placeholder(3))
	assert.Equal(t, "?", SQLite.placeholder(3))
}

func TestCSVWriterOpportunities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "opportunities.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteOpportunities(context.Background(), sampleOpportunities()))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, opportunityHeader, rows[0])
	assert.Equal(t, "BAY-1", rows[1][0])
	assert.Equal(t, "1000000", rows[1][6])
	assert.Equal(t, "FAIR PRICE: 187,500 AED below market | PRIME LOCATION: Downtown Dubai offers premium appreciation", rows[1][15])
	assert.Equal(t, "", rows[2][15])
}

func TestCSVWriterRejectsMixedRecords(t *testing.T) {
	w, err := NewCSVWriter(filepath.Join(t.TempDir(), "mixed.csv"))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteRaw([]*models.RawListing{{Title: "x", ScrapedAt: time.Now()}}))
	assert.Error(t, w.WriteOpportunities(context.Background(), sampleOpportunities()))
}

func TestJSONSourceListings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"property_id": "P1", "title": "2BR Apartment", "price": 1500000, "currency": "AED",
		 "size_sqft": 1200, "bedrooms": 2, "bathrooms": 2, "location_area": "Dubai Marina",
		 "location_city": "Dubai", "location_country": "UAE", "property_type": "apartment"},
		{"property_id": "P2", "price": 0, "size_sqft": 900, "property_type": "Castle"}
	]`), 0o644))

	listings, err := NewJSONSource(path).Listings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, models.Apartment, listings[0].PropertyType)
	assert.Equal(t, "Dubai Marina", listings[0].Area)
	assert.Equal(t, models.Unknown, listings[1].PropertyType)
	assert.Equal(t, int64(0), listings[1].Price)
}

func TestJSONSourceErrors(t *testing.T) {
	_, err := NewJSONSource(filepath.Join(t.TempDir(), "missing.json")).Listings(context.Background())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644))
	_, err = NewJSONSource(path).Listings(context.Background())
	assert.Error(t, err)
}

func TestResultsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "analysis.json")
	opps := sampleOpportunities()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, WriteResults(path, Results{
		Opportunities:     opps,
		PortfolioStats:    services.Aggregate(opps),
		AnalysisTimestamp: at,
		Failures:          []services.ListingFailure{{Index: 3, ListingID: "BAD", Message: "price must be positive"}},
	}))

	r, err := ReadResults(path)
	require.NoError(t, err)
	assert.Equal(t, opps, r.Opportunities)
	assert.Equal(t, 2, r.PortfolioStats.TotalOpportunities)
	assert.True(t, at.Equal(r.AnalysisTimestamp))
	require.Len(t, r.Failures, 1)
	assert.Equal(t, "BAD", r.Failures[0].ListingID)
}
