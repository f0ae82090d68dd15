package retrieval

import (
	"encoding/json"
	"fmt"
)

// Filters narrows and boosts a query. Zero-valued fields are not applied.
type Filters struct {
	City        string       `json:"city,omitempty"`
	MaxPrice    *int64       `json:"max_price,omitempty"`
	BudgetRange *BudgetRange `json:"budget_range,omitempty"`
}

// BudgetRange is an inclusive price range, encoded in JSON as [min, max].
type BudgetRange struct {
	Min int64
	Max int64
}

// Contains reports whether price lies within the range, bounds included.
func (b BudgetRange) Contains(price int64) bool {
	return price >= b.Min && price <= b.Max
}

func (b BudgetRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int64{b.Min, b.Max})
}

func (b *BudgetRange) UnmarshalJSON(data []byte) error {
	var pair []int64
	if err := json.Unmarshal(data, &pair); err != nil {
		return &FilterError{Field: "budget_range", Reason: "must be a [min, max] pair of integers"}
	}
	if len(pair) != 2 {
		return &FilterError{Field: "budget_range", Reason: fmt.Sprintf("expected 2 values, got %d", len(pair))}
	}
	b.Min, b.Max = pair[0], pair[1]
	return nil
}

// FilterError describes a malformed query filter.
type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("retrieval: invalid %s filter: %s", e.Field, e.Reason)
}

// Validate rejects negative prices and inverted budget ranges.
func (f Filters) Validate() error {
	if f.MaxPrice != nil && *f.MaxPrice < 0 {
		return &FilterError{Field: "max_price", Reason: "must not be negative"}
	}
	if b := f.BudgetRange; b != nil {
		if b.Min < 0 || b.Max < 0 {
			return &FilterError{Field: "budget_range", Reason: "bounds must not be negative"}
		}
		if b.Min > b.Max {
			return &FilterError{Field: "budget_range", Reason: fmt.Sprintf("min %d exceeds max %d", b.Min, b.Max)}
		}
	}
	return nil
}
