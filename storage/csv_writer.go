package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"gulf-property-analyzer/models"
)

var opportunityHeader = []string{
	"property_id", "title", "area", "city", "property_type", "currency", "price",
	"size_sqft", "bedrooms", "price_per_sqft", "market_value", "roi_potential",
	"investment_grade", "opportunity_score", "risk_level", "key_insights",
}

var rawHeader = []string{
	"source", "market", "title", "raw_price", "raw_size", "raw_beds", "raw_baths",
	"location", "raw_type", "url", "scraped_at",
}

// CSVWriter writes either opportunities or raw listings to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	header []string
	wrote  bool
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically. The header row is
// written with the first batch, so one writer serves one kind of record.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, eris.Wrap(err, "csv: create output dir")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: create file %q", path)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

func (c *CSVWriter) writeHeader(h []string) error {
	if c.wrote {
		if strings.Join(c.header, ",") != strings.Join(h, ",") {
			return eris.New("csv: writer already holds a different record kind")
		}
		return nil
	}
	if err := c.writer.Write(h); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	c.header = h
	c.wrote = true
	return nil
}

// WriteOpportunities appends one row per opportunity. Insights are joined with " | ".
func (c *CSVWriter) WriteOpportunities(_ context.Context, opps []models.InvestmentOpportunity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeHeader(opportunityHeader); err != nil {
		return err
	}
	for _, o := range opps {
		row := []string{
			o.PropertyID,
			o.Title,
			o.Area,
			o.City,
			string(o.PropertyType),
			o.Currency,
			strconv.FormatInt(o.Price, 10),
			formatFloat(o.SizeSqft),
			strconv.Itoa(o.Bedrooms),
			formatFloat(o.PricePerSqft),
			formatFloat(o.MarketValue),
			o.ROIPotential,
			o.InvestmentGrade,
			formatFloat(o.OpportunityScore),
			o.RiskLevel,
			strings.Join(o.KeyInsights, " | "),
		}
		if err := c.writer.Write(row); err != nil {
			return eris.Wrapf(err, "csv: write row %s", o.PropertyID)
		}
	}

	c.writer.Flush()
	return eris.Wrap(c.writer.Error(), "csv: flush")
}

// WriteRaw appends unprocessed scraped listings.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeHeader(rawHeader); err != nil {
		return err
	}
	for _, l := range listings {
		row := []string{
			l.Source,
			l.Market,
			l.Title,
			l.RawPrice,
			l.RawSize,
			l.RawBeds,
			l.RawBaths,
			l.Location,
			l.RawType,
			l.URL,
			l.ScrapedAt.Format(time.RFC3339),
		}
		if err := c.writer.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}

	c.writer.Flush()
	return eris.Wrap(c.writer.Error(), "csv: flush")
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
