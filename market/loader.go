package market

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"gulf-property-analyzer/models"
)

// benchmarkFile is the on-disk YAML layout for benchmark overrides.
type benchmarkFile struct {
	Default string                     `yaml:"default"`
	Markets map[string]benchmarkRecord `yaml:"markets"`
}

type benchmarkRecord struct {
	City                  string             `yaml:"city"`
	Country               string             `yaml:"country"`
	Currency              string             `yaml:"currency"`
	BaselineUnitPrice     float64            `yaml:"baseline_unit_price"`
	GrowthRate            float64            `yaml:"growth_rate"`
	DefaultYield          float64            `yaml:"default_yield"`
	ReferencePricePerSqft float64            `yaml:"reference_price_per_sqft"`
	AreaMultipliers       map[string]float64 `yaml:"area_multipliers"`
	TypeMultipliers       map[string]float64 `yaml:"type_multipliers"`
	RentalYields          map[string]float64 `yaml:"rental_yields"`
	PrimeAreas            []string           `yaml:"prime_areas"`
	StrongAreas           []string           `yaml:"strong_areas"`
}

// LoadRegistry builds a registry from the built-in benchmarks, replacing or adding
// any market defined in the YAML file at path. An empty path returns the defaults.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "market: read benchmark file %s", path)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes YAML benchmark overrides on top of the built-in markets.
func ParseRegistry(data []byte) (*Registry, error) {
	var f benchmarkFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "market: decode benchmark yaml")
	}

	byKey := make(map[string]*Benchmark)
	var order []string
	for _, b := range DefaultBenchmarks() {
		byKey[b.Market] = b
		order = append(order, b.Market)
	}
	for key, rec := range f.Markets {
		if _, exists := byKey[key]; !exists {
			order = append(order, key)
		}
		byKey[key] = rec.toBenchmark(key)
	}

	defaultKey := f.Default
	if defaultKey == "" {
		defaultKey = DefaultMarket
	}

	benchmarks := make([]*Benchmark, 0, len(order))
	for _, k := range order {
		benchmarks = append(benchmarks, byKey[k])
	}
	return NewRegistry(defaultKey, benchmarks...)
}

func (r benchmarkRecord) toBenchmark(key string) *Benchmark {
	b := &Benchmark{
		Market:                key,
		City:                  r.City,
		Country:               r.Country,
		Currency:              r.Currency,
		BaselineUnitPrice:     r.BaselineUnitPrice,
		GrowthRate:            r.GrowthRate,
		DefaultYield:          r.DefaultYield,
		ReferencePricePerSqft: r.ReferencePricePerSqft,
		AreaMultipliers:       r.AreaMultipliers,
		TypeMultipliers:       toTypeMap(r.TypeMultipliers),
		RentalYields:          toTypeMap(r.RentalYields),
		PrimeAreas:            r.PrimeAreas,
		StrongAreas:           r.StrongAreas,
	}
	if b.DefaultYield == 0 {
		b.DefaultYield = DefaultRentalYield
	}
	if b.AreaMultipliers == nil {
		b.AreaMultipliers = map[string]float64{}
	}
	return b
}

// toTypeMap drops keys that do not name a known property type.
func toTypeMap(in map[string]float64) map[models.PropertyType]float64 {
	out := make(map[models.PropertyType]float64, len(in))
	for k, v := range in {
		if t := models.ParsePropertyType(k); t.IsKnown() {
			out[t] = v
		}
	}
	return out
}
