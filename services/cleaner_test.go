package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/utils"
)

func newTestCleaner() *Cleaner {
	return NewCleaner(utils.NewNopLogger(), market.DefaultRegistry())
}

func TestCleanerParsePrice(t *testing.T) {
	c := newTestCleaner()

	tests := []struct {
		raw          string
		want         int64
		wantCurrency string
	}{
		{"AED 1,250,000", 1_250_000, "AED"},
		{"1,250,000 AED", 1_250_000, "AED"},
		{"SAR 850,000", 850_000, "SAR"},
		{"1.2M", 1_200_000, ""},
		{"QAR 3.5 million", 3_500_000, "QAR"},
		{"", 0, ""},
		{"Price on request", 0, ""},
	}

	for _, tt := range tests {
		got, cur := c.parsePrice(tt.raw)
		assert.Equal(t, tt.want, got, "parsePrice(%q)", tt.raw)
		assert.Equal(t, tt.wantCurrency, cur, "currency of %q", tt.raw)
	}
}

func TestCleanerParseSize(t *testing.T) {
	c := newTestCleaner()

	assert.Equal(t, 1200.0, c.parseSize("1,200 sqft"))
	assert.InDelta(t, 100*sqmToSqft, c.parseSize("100 sqm"), 1e-9)
	assert.Zero(t, c.parseSize("n/a"))
}

func TestParseBedroomsAndType(t *testing.T) {
	assert.Equal(t, 2, parseBedrooms("2 Beds"))
	assert.Equal(t, 0, parseBedrooms("Studio"))
	assert.Equal(t, 4, parseBedrooms("4BR"))

	assert.Equal(t, models.Villa, detectType("Villa", ""))
	assert.Equal(t, models.Penthouse, detectType("", "Stunning Penthouse with sea view"))
	assert.Equal(t, models.Apartment, detectType("", "Spacious flat near metro"))
	assert.Equal(t, models.Unknown, detectType("Land", "Plot in Dubai South"))
}

func TestSplitLocation(t *testing.T) {
	area, city := splitLocation("Dubai Marina,  Dubai", "Dubai")
	assert.Equal(t, "Dubai Marina", area)
	assert.Equal(t, "Dubai", city)

	area, city = splitLocation("Al Olaya", "Riyadh")
	assert.Equal(t, "Al Olaya", area)
	assert.Equal(t, "Riyadh", city)

	area, city = splitLocation("", "Doha")
	assert.Empty(t, area)
	assert.Equal(t, "Doha", city)
}

func TestCleanerClean(t *testing.T) {
	c := newTestCleaner()
	scraped := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	raw := []*models.RawListing{
		{
			Title: "  Luxury   2BR Apartment ", RawPrice: "AED 1,800,000", RawSize: "1,350 sqft",
			RawBeds: "2 Beds", RawBaths: "3 Baths", Location: "Dubai Marina, Dubai",
			RawType: "Apartment", URL: "https://www.bayut.com/property/details-8812345.html",
			Market: "dubai", Source: "Bayut", ScrapedAt: scraped,
		},
		// duplicate URL
		{Title: "dup", RawPrice: "AED 1", RawSize: "1 sqft", URL: "https://www.bayut.com/property/details-8812345.html"},
		// empty URL
		{Title: "no url", RawPrice: "AED 1,000,000", RawSize: "900 sqft"},
		// unparseable price
		{Title: "call us", RawPrice: "Call", RawSize: "900 sqft", URL: "https://example.com/a"},
		{
			Title: "Villa in Al Olaya", RawPrice: "2,400,000", RawSize: "300 sqm",
			Location: "Al Olaya", URL: "https://example.com/villa", Market: "riyadh",
		},
	}

	got := c.Clean(raw)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "BAYUT-8812345", first.ID)
	assert.Equal(t, "Luxury 2BR Apartment", first.Title)
	assert.Equal(t, int64(1_800_000), first.Price)
	assert.Equal(t, "AED", first.Currency)
	assert.Equal(t, 1350.0, first.SizeSqft)
	assert.Equal(t, 2, first.Bedrooms)
	assert.Equal(t, 3, first.Bathrooms)
	assert.Equal(t, "Dubai Marina", first.Area)
	assert.Equal(t, "Dubai", first.City)
	assert.Equal(t, "UAE", first.Country)
	assert.Equal(t, models.Apartment, first.PropertyType)
	assert.Equal(t, "bayut", first.Source)
	assert.Equal(t, scraped, first.ScrapedAt)

	second := got[1]
	assert.True(t, strings.HasPrefix(second.ID, "LST-"))
	assert.Equal(t, "SAR", second.Currency)
	assert.Equal(t, "Riyadh", second.City)
	assert.Equal(t, models.Villa, second.PropertyType)
	assert.InDelta(t, 300*sqmToSqft, second.SizeSqft, 1e-9)
	assert.Equal(t, second.ID, listingID("", "https://example.com/villa"), "ids are stable")
}
