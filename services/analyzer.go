package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/utils"
)

// DefaultWorkers is the batch concurrency used when none is configured.
const DefaultWorkers = 4

// ListingFailure records a listing rejected during batch analysis.
type ListingFailure struct {
	Index     int    `json:"index"`
	ListingID string `json:"property_id"`
	Err       error  `json:"-"`
	Message   string `json:"error"`
}

// BatchResult is the outcome of AnalyzeBatch. Opportunities keep input order.
type BatchResult struct {
	Opportunities []models.InvestmentOpportunity
	Failures      []ListingFailure
}

// AnalyzerOptions tunes an Analyzer. Zero values pick defaults.
type AnalyzerOptions struct {
	Workers  int
	Observer Observer
}

// Analyzer runs the valuation pipeline: market value, ROI, score, risk, insights.
type Analyzer struct {
	registry *market.Registry
	rates    market.Rates

	valuer   *Valuer
	roi      *ROIProjector
	scorer   *Scorer
	insights *InsightGenerator

	logger   *utils.Logger
	observer Observer
	workers  int

	// unknown benchmark keys already reported, so each is logged once
	reported *utils.KeySet
}

// NewAnalyzer wires the pipeline stages over one benchmark registry.
func NewAnalyzer(registry *market.Registry, rates market.Rates, logger *utils.Logger, opts AnalyzerOptions) *Analyzer {
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}
	if rates == nil {
		rates = market.DefaultRates
	}
	return &Analyzer{
		registry: registry,
		rates:    rates,
		valuer:   NewValuer(registry),
		roi:      NewROIProjector(registry),
		scorer:   NewScorer(registry),
		insights: NewInsightGenerator(registry),
		logger:   logger,
		observer: opts.Observer,
		workers:  opts.Workers,
		reported: utils.NewKeySet(),
	}
}

// Analyze turns one listing into an investment opportunity.
func (a *Analyzer) Analyze(l models.PropertyListing) (models.InvestmentOpportunity, error) {
	if err := validateListing(l); err != nil {
		return models.InvestmentOpportunity{}, err
	}
	a.reportUnknownKeys(l)

	mv, err := a.valuer.MarketValue(l)
	if err != nil {
		return models.InvestmentOpportunity{}, err
	}
	roi, grade, err := a.roi.Project(l, mv)
	if err != nil {
		return models.InvestmentOpportunity{}, err
	}
	score := a.scorer.Score(l, mv, roi)

	currency := l.Currency
	if currency == "" {
		currency = a.registry.ForListing(l).Currency
	}
	ppsf, _ := l.PricePerSqft()

	return models.InvestmentOpportunity{
		PropertyID:       l.ID,
		Title:            l.Title,
		Area:             l.Area,
		City:             l.City,
		Country:          l.Country,
		PropertyType:     l.PropertyType,
		Currency:         currency,
		Price:            l.Price,
		SizeSqft:         l.SizeSqft,
		Bedrooms:         l.Bedrooms,
		Bathrooms:        l.Bathrooms,
		PricePerSqft:     ppsf,
		MarketValue:      mv,
		ROIPercent:       roi,
		ROIPotential:     fmt.Sprintf("%.1f%%", roi),
		InvestmentGrade:  string(grade),
		OpportunityScore: score,
		RiskLevel:        ClassifyRisk(l.Price, currency, score, a.rates),
		KeyInsights:      a.insights.Generate(l, mv, roi),
	}, nil
}

// AnalyzeBatch analyzes listings concurrently. A rejected listing is recorded in
// Failures and does not stop the batch; only context cancellation aborts it.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, listings []models.PropertyListing) (*BatchResult, error) {
	type slot struct {
		opp models.InvestmentOpportunity
		err error
	}

	total := len(listings)
	slots := make([]slot, total)
	var done atomic.Int64

	a.logger.Info("[analyzer] Analyzing %d listings with %d workers", total, a.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i := range listings {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i].opp, slots[i].err = a.Analyze(listings[i])
			a.observer.OnProgress(int(done.Add(1)), total)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "analyzer: batch")
	}

	result := &BatchResult{
		Opportunities: make([]models.InvestmentOpportunity, 0, total),
		Failures:      []ListingFailure{},
	}
	for i, s := range slots {
		if s.err != nil {
			a.logger.Warn("[analyzer] Skipping listing %q: %v", listings[i].ID, s.err)
			result.Failures = append(result.Failures, ListingFailure{
				Index:     i,
				ListingID: listings[i].ID,
				Err:       s.err,
				Message:   s.err.Error(),
			})
			continue
		}
		result.Opportunities = append(result.Opportunities, s.opp)
	}

	a.observer.OnComplete(len(result.Opportunities), len(result.Failures))
	return result, nil
}

func validateListing(l models.PropertyListing) error {
	switch {
	case strings.TrimSpace(l.ID) == "":
		return &InvalidInputError{ListingID: l.ID, Field: "property_id", Value: l.ID, Reason: "must not be empty"}
	case l.Price <= 0:
		return &InvalidInputError{ListingID: l.ID, Field: "price", Value: l.Price, Reason: "must be positive"}
	case !l.ValidSize():
		return &InvalidInputError{ListingID: l.ID, Field: "size_sqft", Value: l.SizeSqft, Reason: "must be a finite positive number"}
	}
	return nil
}

func (a *Analyzer) reportUnknownKeys(l models.PropertyListing) {
	b := a.registry.ForListing(l)
	if !b.KnowsArea(l.Area) && a.reported.Add(b.Market+"/area/"+l.Area) {
		a.logger.Info("[analyzer] No %s benchmark for area %q, using neutral multiplier", b.Market, l.Area)
	}
	if !b.KnowsType(l.PropertyType) && a.reported.Add(b.Market+"/type/"+string(l.PropertyType)) {
		a.logger.Info("[analyzer] No %s benchmark for property type %q, using neutral multiplier", b.Market, l.PropertyType)
	}
}
