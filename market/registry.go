package market

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"gulf-property-analyzer/models"
)

// Registry maps market keys to benchmarks and resolves the benchmark for a listing.
// It is read-only after construction and safe for concurrent use.
type Registry struct {
	markets    map[string]*Benchmark
	defaultKey string
}

// NewRegistry validates the given benchmarks and indexes them by market key.
func NewRegistry(defaultKey string, benchmarks ...*Benchmark) (*Registry, error) {
	r := &Registry{
		markets:    make(map[string]*Benchmark, len(benchmarks)),
		defaultKey: defaultKey,
	}
	for _, b := range benchmarks {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		r.markets[b.Market] = b
	}
	if _, ok := r.markets[defaultKey]; !ok {
		return nil, eris.Errorf("market: default market %q has no benchmark", defaultKey)
	}
	return r, nil
}

// DefaultRegistry returns a registry over the built-in Gulf benchmarks.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultMarket, DefaultBenchmarks()...)
	if err != nil {
		// Built-in tables are covered by tests; failing here is a programming error.
		panic(err)
	}
	return r
}

// Get returns the benchmark for a market key.
func (r *Registry) Get(key string) (*Benchmark, bool) {
	b, ok := r.markets[key]
	return b, ok
}

// Default returns the fallback benchmark.
func (r *Registry) Default() *Benchmark {
	return r.markets[r.defaultKey]
}

// ForListing picks the benchmark whose city matches the listing, or the default.
func (r *Registry) ForListing(l models.PropertyListing) *Benchmark {
	city := strings.TrimSpace(l.City)
	if city != "" {
		for _, b := range r.markets {
			if strings.EqualFold(b.City, city) {
				return b
			}
		}
	}
	return r.Default()
}

// Markets returns the registered market keys in sorted order.
func (r *Registry) Markets() []string {
	keys := make([]string, 0, len(r.markets))
	for k := range r.markets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
