package models

// DocumentMetadata is the structured part of a RetrievalDocument used by query filters.
type DocumentMetadata struct {
	City             string       `json:"city"`
	Area             string       `json:"area"`
	Price            int64        `json:"price"`
	Currency         string       `json:"currency"`
	PropertyType     PropertyType `json:"property_type"`
	Bedrooms         int          `json:"bedrooms"`
	SizeSqft         float64      `json:"size_sqft"`
	PricePerSqft     float64      `json:"price_per_sqft"`
	OpportunityScore *float64     `json:"opportunity_score,omitempty"`
}

// RetrievalDocument is a searchable rendition of a listing or opportunity.
type RetrievalDocument struct {
	ID       string           `json:"identifier"`
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
}

// Match is one query result. RelevanceScore only lives as long as the query response.
type Match struct {
	ID             string           `json:"identifier"`
	Content        string           `json:"content"`
	Metadata       DocumentMetadata `json:"metadata"`
	RelevanceScore int              `json:"relevance_score"`
}
