package storage

import (
	"context"

	"gulf-property-analyzer/models"
)

// ListingSource supplies listings for analysis.
type ListingSource interface {
	Listings(ctx context.Context) ([]models.PropertyListing, error)
}

// OpportunityWriter is the interface any opportunity storage backend must satisfy.
type OpportunityWriter interface {
	WriteOpportunities(ctx context.Context, opps []models.InvestmentOpportunity) error
	Close() error
}

// SummaryWriter persists portfolio summaries.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, s models.PortfolioSummary) error
}

// RawListingWriter is the interface for persisting unprocessed scraped data.
type RawListingWriter interface {
	WriteRaw(listings []*models.RawListing) error
	Close() error
}

var (
	_ ListingSource     = (*JSONSource)(nil)
	_ OpportunityWriter = (*SQLStore)(nil)
	_ OpportunityWriter = (*CSVWriter)(nil)
	_ SummaryWriter     = (*SQLStore)(nil)
	_ RawListingWriter  = (*CSVWriter)(nil)
)
