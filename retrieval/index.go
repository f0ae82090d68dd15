// Package retrieval is the keyword and filter search over listing and opportunity
// documents that backs the advisor and the query API.
package retrieval

import (
	"sort"
	"strings"
	"sync"

	"gulf-property-analyzer/models"
	"gulf-property-analyzer/utils"
)

// DefaultTopK is used when a query asks for zero or fewer results.
const DefaultTopK = 5

// Relevance weights.
const (
	keywordWeight  = 1
	cityWeight     = 2
	budgetWeight   = 3
	maxPriceWeight = 1
	qualityWeight  = 1

	// QualityScore is the opportunity score at which a document gets the quality boost.
	QualityScore = 70.0
)

type entry struct {
	doc   models.RetrievalDocument
	lower string
}

// Index is an append-only in-memory document store. Ingestion takes an exclusive
// lock; queries share a read lock and may run in parallel.
type Index struct {
	mu      sync.RWMutex
	entries []entry
	logger  *utils.Logger
}

// NewIndex creates an empty Index.
func NewIndex(logger *utils.Logger) *Index {
	return &Index{logger: logger}
}

// Ingest appends documents. No deduplication is performed.
func (ix *Index) Ingest(docs ...models.RetrievalDocument) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, d := range docs {
		ix.entries = append(ix.entries, entry{doc: d, lower: strings.ToLower(d.Content)})
	}
	ix.logger.Info("[retrieval] Ingested %d documents (total %d)", len(docs), len(ix.entries))
}

// IngestOpportunities appends one document per opportunity.
func (ix *Index) IngestOpportunities(opps []models.InvestmentOpportunity) {
	docs := make([]models.RetrievalDocument, len(opps))
	for i, o := range opps {
		docs[i] = OpportunityDocument(o)
	}
	ix.Ingest(docs...)
}

// IngestListings appends one document per listing.
func (ix *Index) IngestListings(listings []models.PropertyListing) {
	docs := make([]models.RetrievalDocument, len(listings))
	for i, l := range listings {
		docs[i] = ListingDocument(l)
	}
	ix.Ingest(docs...)
}

// Len returns the number of ingested documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Query ranks documents against text and filters and returns at most topK matches,
// most relevant first. Documents that score zero are left out and ties keep ingestion
// order. Malformed filters yield an empty result and a *FilterError.
func (ix *Index) Query(text string, filters Filters, topK int) ([]models.Match, error) {
	if err := filters.Validate(); err != nil {
		return []models.Match{}, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	tokens := strings.Fields(strings.ToLower(text))
	city := strings.ToLower(strings.TrimSpace(filters.City))

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := make([]models.Match, 0, topK)
	for _, e := range ix.entries {
		score := relevance(e, tokens, city, filters)
		if score == 0 {
			continue
		}
		matches = append(matches, models.Match{
			ID:             e.doc.ID,
			Content:        e.doc.Content,
			Metadata:       e.doc.Metadata,
			RelevanceScore: score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func relevance(e entry, tokens []string, city string, f Filters) int {
	score := 0
	md := e.doc.Metadata

	for _, tok := range tokens {
		if strings.Contains(e.lower, tok) {
			score += keywordWeight
			break
		}
	}
	if city != "" && strings.Contains(strings.ToLower(md.City), city) {
		score += cityWeight
	}
	if f.BudgetRange != nil && f.BudgetRange.Contains(md.Price) {
		score += budgetWeight
	}
	if f.MaxPrice != nil && md.Price <= *f.MaxPrice {
		score += maxPriceWeight
	}
	if md.OpportunityScore != nil && *md.OpportunityScore >= QualityScore {
		score += qualityWeight
	}
	return score
}
