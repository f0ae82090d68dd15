package models

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// PropertyType is the closed set of property categories the benchmarks know about.
type PropertyType string

const (
	Apartment PropertyType = "Apartment"
	Villa     PropertyType = "Villa"
	Townhouse PropertyType = "Townhouse"
	Penthouse PropertyType = "Penthouse"
	Unknown   PropertyType = "unknown"
)

// KnownTypes lists every recognised property type.
var KnownTypes = []PropertyType{Apartment, Villa, Townhouse, Penthouse}

// ParsePropertyType maps a free-form string onto a PropertyType.
// Anything unrecognised becomes Unknown.
func ParsePropertyType(s string) PropertyType {
	s = strings.TrimSpace(s)
	for _, t := range KnownTypes {
		if strings.EqualFold(s, string(t)) {
			return t
		}
	}
	return Unknown
}

// IsKnown reports whether t is one of KnownTypes.
func (t PropertyType) IsKnown() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// UnmarshalText lets PropertyType decode from JSON and YAML strings.
func (t *PropertyType) UnmarshalText(b []byte) error {
	*t = ParsePropertyType(string(b))
	return nil
}

// RawListing holds unprocessed scraped data directly from the browser.
type RawListing struct {
	Title     string
	RawPrice  string
	RawSize   string
	RawBeds   string
	RawBaths  string
	Location  string
	RawType   string
	URL       string
	Market    string
	ScrapedAt time.Time
	Source    string
}

// PropertyListing is one validated property record as acquired from a market source.
type PropertyListing struct {
	ID           string       `json:"property_id"`
	Title        string       `json:"title"`
	Price        int64        `json:"price"`
	Currency     string       `json:"currency"`
	SizeSqft     float64      `json:"size_sqft"`
	Bedrooms     int          `json:"bedrooms"`
	Bathrooms    int          `json:"bathrooms"`
	Area         string       `json:"location_area"`
	City         string       `json:"location_city"`
	Country      string       `json:"location_country"`
	PropertyType PropertyType `json:"property_type"`
	Source       string       `json:"source,omitempty"`
	URL          string       `json:"listing_url,omitempty"`
	ScrapedAt    time.Time    `json:"scraped_at,omitempty"`
}

// ValidSize reports whether SizeSqft is a finite positive number.
func (l PropertyListing) ValidSize() bool {
	return l.SizeSqft > 0 && !math.IsInf(l.SizeSqft, 0)
}

// PricePerSqft returns price divided by size. ok is false when size is not
// a finite positive number.
func (l PropertyListing) PricePerSqft() (value float64, ok bool) {
	if !l.ValidSize() {
		return 0, false
	}
	return float64(l.Price) / l.SizeSqft, true
}

// MarshalJSON adds the derived price_per_sqft, null when size is unusable.
func (l PropertyListing) MarshalJSON() ([]byte, error) {
	type plain PropertyListing
	var pps *float64
	if v, ok := l.PricePerSqft(); ok {
		pps = &v
	}
	return json.Marshal(struct {
		plain
		PricePerSqft *float64 `json:"price_per_sqft"`
	}{plain(l), pps})
}
