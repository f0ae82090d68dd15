package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"gulf-property-analyzer/models"
	"gulf-property-analyzer/services"
)

// JSONSource loads listings from a JSON array on disk.
type JSONSource struct {
	Path string
}

// NewJSONSource returns a source reading path.
func NewJSONSource(path string) *JSONSource {
	return &JSONSource{Path: path}
}

// Listings decodes every listing in the file. Records are returned as-is;
// validation is the analyzer's job.
func (s *JSONSource) Listings(ctx context.Context) ([]models.PropertyListing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "json: read %q", s.Path)
	}
	var listings []models.PropertyListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, eris.Wrapf(err, "json: decode listings from %q", s.Path)
	}
	return listings, nil
}

// WriteListings writes listings as an indented JSON array, creating parent directories.
func WriteListings(path string, listings []models.PropertyListing) error {
	if listings == nil {
		listings = []models.PropertyListing{}
	}
	return writeJSON(path, listings)
}

// Results is the exported outcome of one analysis run.
type Results struct {
	Opportunities     []models.InvestmentOpportunity `json:"opportunities"`
	PortfolioStats    models.PortfolioSummary        `json:"portfolio_stats"`
	AnalysisTimestamp time.Time                      `json:"analysis_timestamp"`
	Failures          []services.ListingFailure      `json:"failures,omitempty"`
}

// WriteResults exports an analysis run as JSON.
func WriteResults(path string, r Results) error {
	if r.Opportunities == nil {
		r.Opportunities = []models.InvestmentOpportunity{}
	}
	return writeJSON(path, r)
}

// ReadResults loads a previously exported analysis run.
func ReadResults(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "json: read %q", path)
	}
	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "json: decode results from %q", path)
	}
	return &r, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "json: create output dir")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "json: encode")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "json: write %q", path)
	}
	return nil
}
