package bayut

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulf-property-analyzer/config"
	"gulf-property-analyzer/utils"
)

func TestSearchURL(t *testing.T) {
	u, err := searchURL("dubai", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://www.bayut.com/for-sale/property/dubai/", u)

	u, err = searchURL("riyadh", 3)
	require.NoError(t, err)
	assert.Equal(t, "https://www.bayut.sa/en/for-sale/property/riyadh/?page=3", u)

	_, err = searchURL("doha", 1)
	assert.Error(t, err)
}

func TestScrapeRejectsUnsupportedMarket(t *testing.T) {
	s := New(config.ScrapeConfig{Market: "manama", Pages: 1, ListingsPerPage: 1}, utils.NewNopLogger())
	_, err := s.Scrape(context.Background())
	assert.Error(t, err)
}

func TestToRawListingsSkipsDuplicates(t *testing.T) {
	s := New(config.ScrapeConfig{Market: "dubai", MaxConcurrency: 1}, utils.NewNopLogger())
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return at }

	cards := []*card{
		{Title: "2BR in Marina", Price: "AED 1,500,000", Size: "1,200 sqft", URL: "https://www.bayut.com/property/details-123456.html"},
		{Title: "no url"},
		{Title: "2BR in Marina again", URL: "https://www.bayut.com/property/details-123456.html"},
	}
	got := s.toRawListings(cards)
	require.Len(t, got, 1)
	assert.Equal(t, "AED 1,500,000", got[0].RawPrice)
	assert.Equal(t, "1,200 sqft", got[0].RawSize)
	assert.Equal(t, "dubai", got[0].Market)
	assert.Equal(t, "bayut", got[0].Source)
	assert.Equal(t, at, got[0].ScrapedAt)

	// already visited on a later page
	assert.Empty(t, s.toRawListings(cards[:1]))
}

func TestMergeCardFillsOnlyEmptyFields(t *testing.T) {
	dst := &card{Title: "Listing", Price: "AED 900,000", Type: " "}
	mergeCard(dst, &card{Title: "Other", Size: "850 sqft", Type: "Apartment", Location: "JVC, Dubai"})

	assert.Equal(t, "Listing", dst.Title)
	assert.Equal(t, "AED 900,000", dst.Price)
	assert.Equal(t, "850 sqft", dst.Size)
	assert.Equal(t, "Apartment", dst.Type)
	assert.Equal(t, "JVC, Dubai", dst.Location)
	assert.False(t, dst.incomplete())
}

func TestFindChromeBinaryPrefersConfigured(t *testing.T) {
	assert.Equal(t, "/opt/chrome", findChromeBinary("/opt/chrome"))
	t.Setenv("CHROME_BIN", "/env/chrome")
	assert.Equal(t, "/env/chrome", findChromeBinary(""))
}
