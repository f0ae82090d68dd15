package market

import "gulf-property-analyzer/models"

// DefaultMarket is the registry key used when a listing's city has no benchmark.
const DefaultMarket = "dubai"

func standardTypeMultipliers() map[models.PropertyType]float64 {
	return map[models.PropertyType]float64{
		models.Apartment: 1.0,
		models.Townhouse: 1.05,
		models.Villa:     1.15,
		models.Penthouse: 1.30,
	}
}

func standardYields() map[models.PropertyType]float64 {
	return map[models.PropertyType]float64{
		models.Apartment: 0.065,
		models.Villa:     0.055,
		models.Townhouse: 0.060,
		models.Penthouse: 0.070,
	}
}

// DefaultBenchmarks returns fresh copies of the built-in Gulf market benchmarks.
func DefaultBenchmarks() []*Benchmark {
	return []*Benchmark{
		{
			Market: "dubai", City: "Dubai", Country: "UAE", Currency: "AED",
			BaselineUnitPrice: 950, GrowthRate: 0.08, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 1000,
			AreaMultipliers: map[string]float64{
				"Downtown Dubai": 1.25,
				"DIFC":           1.20,
				"Palm Jumeirah":  1.35,
				"Dubai Marina":   1.15,
				"JBR":            1.18,
				"Business Bay":   1.10,
				"City Walk":      1.22,
				"Dubai Hills":    1.08,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"Downtown Dubai", "DIFC", "Palm Jumeirah"},
			StrongAreas:     []string{"Dubai Marina", "JBR", "City Walk"},
		},
		{
			Market: "abu_dhabi", City: "Abu Dhabi", Country: "UAE", Currency: "AED",
			BaselineUnitPrice: 800, GrowthRate: 0.062, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 850,
			AreaMultipliers: map[string]float64{
				"Saadiyat Island": 1.25,
				"Corniche":        1.15,
				"Al Reem Island":  1.10,
				"Yas Island":      1.12,
				"Al Raha Beach":   1.08,
				"Masdar City":     1.05,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"Saadiyat Island", "Corniche"},
			StrongAreas:     []string{"Al Reem Island", "Yas Island"},
		},
		{
			Market: "riyadh", City: "Riyadh", Country: "Saudi Arabia", Currency: "SAR",
			BaselineUnitPrice: 600, GrowthRate: 0.10, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 650,
			AreaMultipliers: map[string]float64{
				"King Abdullah Financial District": 1.30,
				"Diplomatic Quarter":               1.25,
				"Al Olaya":                         1.20,
				"Al Nakheel":                       1.10,
				"Al Yasmin":                        1.08,
				"Al Malaz":                         1.02,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields: map[models.PropertyType]float64{
				models.Apartment: 0.070,
				models.Villa:     0.060,
				models.Townhouse: 0.065,
				models.Penthouse: 0.075,
			},
			PrimeAreas:  []string{"King Abdullah Financial District", "Diplomatic Quarter", "Al Olaya"},
			StrongAreas: []string{"Al Nakheel", "Al Yasmin"},
		},
		{
			Market: "jeddah", City: "Jeddah", Country: "Saudi Arabia", Currency: "SAR",
			BaselineUnitPrice: 550, GrowthRate: 0.085, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 600,
			AreaMultipliers: map[string]float64{
				"Al Corniche": 1.20,
				"Obhur":       1.15,
				"Al Shati":    1.12,
				"Al Rawdah":   1.05,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"Al Corniche", "Obhur"},
			StrongAreas:     []string{"Al Shati"},
		},
		{
			Market: "dammam", City: "Dammam", Country: "Saudi Arabia", Currency: "SAR",
			BaselineUnitPrice: 450, GrowthRate: 0.07, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 500,
			AreaMultipliers: map[string]float64{
				"Half Moon Bay": 1.15,
				"Al Shura":      1.08,
				"Al Faisaliyah": 1.05,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"Half Moon Bay"},
			StrongAreas:     []string{"Al Shura"},
		},
		{
			Market: "doha", City: "Doha", Country: "Qatar", Currency: "QAR",
			BaselineUnitPrice: 900, GrowthRate: 0.065, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 950,
			AreaMultipliers: map[string]float64{
				"The Pearl": 1.30,
				"West Bay":  1.20,
				"Lusail":    1.15,
				"Al Sadd":   1.05,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"The Pearl", "West Bay"},
			StrongAreas:     []string{"Lusail"},
		},
		{
			Market: "kuwait_city", City: "Kuwait City", Country: "Kuwait", Currency: "KWD",
			BaselineUnitPrice: 75, GrowthRate: 0.05, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 80,
			AreaMultipliers: map[string]float64{
				"Salmiya": 1.12,
				"Sharq":   1.15,
				"Mishref": 1.08,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"Sharq"},
			StrongAreas:     []string{"Salmiya"},
		},
		{
			Market: "manama", City: "Manama", Country: "Bahrain", Currency: "BHD",
			BaselineUnitPrice: 90, GrowthRate: 0.045, DefaultYield: DefaultRentalYield,
			ReferencePricePerSqft: 95,
			AreaMultipliers: map[string]float64{
				"Bahrain Bay":   1.25,
				"Seef":          1.15,
				"Juffair":       1.08,
				"Amwaj Islands": 1.12,
			},
			TypeMultipliers: standardTypeMultipliers(),
			RentalYields:    standardYields(),
			PrimeAreas:      []string{"Bahrain Bay"},
			StrongAreas:     []string{"Seef", "Amwaj Islands"},
		},
	}
}
