package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropertyType(t *testing.T) {
	tests := []struct {
		in   string
		want PropertyType
	}{
		{"Apartment", Apartment},
		{"villa", Villa},
		{" PENTHOUSE ", Penthouse},
		{"Townhouse", Townhouse},
		{"Duplex", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePropertyType(tt.in), tt.in)
	}
	assert.False(t, Unknown.IsKnown())
	assert.True(t, Villa.IsKnown())
}

func TestPricePerSqft(t *testing.T) {
	l := PropertyListing{Price: 1_000_000, SizeSqft: 1000}
	v, ok := l.PricePerSqft()
	assert.True(t, ok)
	assert.Equal(t, 1000.0, v)

	_, ok = PropertyListing{Price: 1_000_000}.PricePerSqft()
	assert.False(t, ok)
}

func TestPropertyListing_DecodeWireRecord(t *testing.T) {
	data := []byte(`{
		"property_id": "BAY-01-001",
		"title": "2BR Apartment in Dubai Marina",
		"price": 1450000,
		"currency": "AED",
		"size_sqft": 1200,
		"bedrooms": 2,
		"bathrooms": 2,
		"location_area": "Dubai Marina",
		"location_city": "Dubai",
		"location_country": "UAE",
		"property_type": "apartment",
		"price_per_sqft": 1208.33
	}`)

	var l PropertyListing
	require.NoError(t, json.Unmarshal(data, &l))
	assert.Equal(t, "BAY-01-001", l.ID)
	assert.Equal(t, int64(1450000), l.Price)
	assert.Equal(t, Apartment, l.PropertyType)
	assert.Equal(t, "Dubai Marina", l.Area)
	assert.Equal(t, "UAE", l.Country)
}

func TestPropertyListing_EncodesPricePerSqft(t *testing.T) {
	data, err := json.Marshal(PropertyListing{ID: "BAY-1", Price: 1_500_000, SizeSqft: 1200, PropertyType: Apartment})
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "BAY-1", wire["property_id"])
	assert.Equal(t, "Apartment", wire["property_type"])
	assert.InDelta(t, 1250.0, wire["price_per_sqft"], 1e-9)

	data, err = json.Marshal(PropertyListing{ID: "BAY-2", Price: 1_500_000})
	require.NoError(t, err)
	wire = nil
	require.NoError(t, json.Unmarshal(data, &wire))
	v, present := wire["price_per_sqft"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestPricePerSqftRejectsNonFiniteSize(t *testing.T) {
	for _, size := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -5} {
		l := PropertyListing{Price: 1_000_000, SizeSqft: size}
		assert.False(t, l.ValidSize(), "%v", size)
		_, ok := l.PricePerSqft()
		assert.False(t, ok, "%v", size)
	}
}
