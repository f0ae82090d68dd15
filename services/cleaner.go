package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/utils"
)

const sqmToSqft = 10.7639

var (
	// numberRegexp captures the first numeric value, with optional thousands separators
	numberRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// currencyRegexp captures a three-letter Gulf currency code
	currencyRegexp = regexp.MustCompile(`\b(AED|SAR|QAR|KWD|BHD|OMR|USD)\b`)
	// millionRegexp detects shorthand prices such as "1.2M" or "3.5 million"
	millionRegexp = regexp.MustCompile(`(?i)\d\s*(m|mn|million)\b`)
	// sqmRegexp detects sizes given in square metres
	sqmRegexp = regexp.MustCompile(`(?i)(sqm|sq\.?\s*m\b|m²|square met)`)
	// listingIDRegexp captures the numeric listing id in a portal URL
	listingIDRegexp = regexp.MustCompile(`(\d{5,})`)
)

// Cleaner transforms scraped RawListings into validated PropertyListings.
type Cleaner struct {
	logger   *utils.Logger
	registry *market.Registry
}

// NewCleaner creates a Cleaner. The registry supplies city, country and currency
// defaults for the market a raw listing was scraped from.
func NewCleaner(logger *utils.Logger, registry *market.Registry) *Cleaner {
	return &Cleaner{logger: logger, registry: registry}
}

// Clean processes raw listings and returns cleaned records. Listings without a URL,
// duplicates and listings whose price or size cannot be parsed are dropped.
func (c *Cleaner) Clean(raw []*models.RawListing) []models.PropertyListing {
	seen := utils.NewKeySet()
	result := make([]models.PropertyListing, 0, len(raw))

	for _, r := range raw {
		url := strings.TrimSpace(r.URL)
		if url == "" {
			c.logger.Warn("[cleaner] Dropping listing with empty URL: %s", r.Title)
			continue
		}
		if !seen.Add(url) {
			c.logger.Debug("[cleaner] Duplicate URL skipped: %s", url)
			continue
		}

		b := c.benchmarkFor(r.Market)
		price, currency := c.parsePrice(r.RawPrice)
		if currency == "" {
			currency = b.Currency
		}
		size := c.parseSize(r.RawSize)
		if price <= 0 || size <= 0 {
			c.logger.Warn("[cleaner] Dropping %s: unparseable price %q or size %q", url, r.RawPrice, r.RawSize)
			continue
		}

		title := normaliseText(r.Title)
		area, city := splitLocation(r.Location, b.City)
		scrapedAt := r.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now()
		}

		result = append(result, models.PropertyListing{
			ID:           listingID(r.Source, url),
			Title:        title,
			Price:        price,
			Currency:     currency,
			SizeSqft:     size,
			Bedrooms:     parseBedrooms(r.RawBeds),
			Bathrooms:    parseCount(r.RawBaths),
			Area:         area,
			City:         city,
			Country:      b.Country,
			PropertyType: detectType(r.RawType, title),
			Source:       strings.ToLower(strings.TrimSpace(r.Source)),
			URL:          url,
			ScrapedAt:    scrapedAt,
		})
	}

	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

func (c *Cleaner) benchmarkFor(marketKey string) *market.Benchmark {
	if b, ok := c.registry.Get(strings.ToLower(strings.TrimSpace(marketKey))); ok {
		return b
	}
	return c.registry.Default()
}

// parsePrice extracts an integer price and, when present, its currency code.
// Examples:
//
//	"AED 1,250,000" → 1250000, "AED"
//	"1.2M"          → 1200000, ""
//	"SAR 850,000/yr" → 850000, "SAR"
func (c *Cleaner) parsePrice(raw string) (int64, string) {
	upper := strings.ToUpper(raw)
	currency := ""
	if m := currencyRegexp.FindStringSubmatch(upper); len(m) == 2 {
		currency = m[1]
	}

	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0, currency
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, currency
	}
	if millionRegexp.MatchString(raw) {
		value *= 1_000_000
	}
	return int64(value + 0.5), currency
}

// parseSize extracts a size in square feet, converting from square metres when needed.
func (c *Cleaner) parseSize(raw string) float64 {
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	if sqmRegexp.MatchString(raw) {
		value *= sqmToSqft
	}
	return value
}

// parseBedrooms reads "2 Beds", "3BR" or "Studio" (0).
func parseBedrooms(raw string) int {
	if strings.Contains(strings.ToLower(raw), "studio") {
		return 0
	}
	return parseCount(raw)
}

func parseCount(raw string) int {
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

var titleTypeKeywords = []struct {
	keyword string
	t       models.PropertyType
}{
	{"penthouse", models.Penthouse},
	{"townhouse", models.Townhouse},
	{"villa", models.Villa},
	{"apartment", models.Apartment},
	{"flat", models.Apartment},
	{"studio", models.Apartment},
}

// detectType prefers the portal's type label and falls back to title keywords.
func detectType(rawType, title string) models.PropertyType {
	if t := models.ParsePropertyType(rawType); t.IsKnown() {
		return t
	}
	lower := strings.ToLower(rawType + " " + title)
	for _, kw := range titleTypeKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.t
		}
	}
	return models.Unknown
}

// splitLocation turns "Dubai Marina, Dubai" into area and city. The most specific
// segment comes first on portal cards.
func splitLocation(raw, defaultCity string) (area, city string) {
	parts := strings.Split(raw, ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normaliseText(p); p != "" {
			segments = append(segments, p)
		}
	}
	city = defaultCity
	switch len(segments) {
	case 0:
		return "", city
	case 1:
		return segments[0], city
	}
	last := segments[len(segments)-1]
	if defaultCity == "" || strings.EqualFold(last, defaultCity) {
		city = last
	}
	return segments[0], city
}

// listingID derives a stable identifier: the portal's numeric id when the URL has one,
// otherwise a name-based UUID of the URL.
func listingID(source, url string) string {
	prefix := strings.ToUpper(strings.TrimSpace(source))
	if prefix == "" {
		prefix = "LST"
	}
	if m := listingIDRegexp.FindStringSubmatch(url); len(m) == 2 {
		return prefix + "-" + m[1]
	}
	return prefix + "-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
