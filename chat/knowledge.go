package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ExperienceLevel is how seasoned an investor is.
type ExperienceLevel string

const (
	Beginner     ExperienceLevel = "beginner"
	Intermediate ExperienceLevel = "intermediate"
	Advanced     ExperienceLevel = "advanced"
)

// ValidExperienceLevels lists the accepted levels.
var ValidExperienceLevels = []ExperienceLevel{Beginner, Intermediate, Advanced}

// IsValid reports whether l is a known level.
func (l ExperienceLevel) IsValid() bool {
	for _, v := range ValidExperienceLevels {
		if l == v {
			return true
		}
	}
	return false
}

// Label returns a display name.
func (l ExperienceLevel) Label() string {
	switch l {
	case Beginner:
		return "Beginner"
	case Intermediate:
		return "Intermediate"
	case Advanced:
		return "Advanced"
	default:
		return string(l)
	}
}

// UnmarshalText accepts the levels case-insensitively along with the aliases
// "experienced" and "enterprise".
func (l *ExperienceLevel) UnmarshalText(b []byte) error {
	switch s := strings.ToLower(strings.TrimSpace(string(b))); s {
	case "":
		*l = ""
	case "experienced":
		*l = Intermediate
	case "enterprise", "expert":
		*l = Advanced
	default:
		v := ExperienceLevel(s)
		if !v.IsValid() {
			return eris.Errorf("chat: unknown experience level %q", s)
		}
		*l = v
	}
	return nil
}

// Strategy is investment guidance for one experience level.
type Strategy struct {
	Focus            string
	PropertyTypes    []string
	BudgetAllocation string
	RiskLevel        string
	Tips             []string
}

// MarketInsight summarises one city's market.
type MarketInsight struct {
	BestFor          string
	GrowthRate       float64
	Outlook          string
	GrowthDrivers    []string
	Challenges       []string
	RecommendedAreas []string
}

// Knowledge is the static market knowledge folded into advisor prompts.
type Knowledge struct {
	Strategies map[ExperienceLevel]Strategy
	Markets    map[string]MarketInsight
}

// DefaultKnowledge returns the built-in knowledge base.
func DefaultKnowledge() *Knowledge {
	return &Knowledge{
		Strategies: map[ExperienceLevel]Strategy{
			Beginner: {
				Focus:            "Established markets with high liquidity",
				PropertyTypes:    []string{"Apartments in Dubai Marina", "Townhouses in established communities"},
				BudgetAllocation: "Single property focus, 20% cash buffer",
				RiskLevel:        "Low to Medium",
				Tips: []string{
					"Start with established areas like Downtown Dubai or Dubai Marina",
					"Consider apartments over villas for easier liquidity",
					"Budget 20-30% above asking price for fees and furnishing",
					"Research rental yields in your target area",
				},
			},
			Intermediate: {
				Focus:            "Diversified portfolio across 2-3 markets",
				PropertyTypes:    []string{"Mix of apartments and villas", "Consider off-plan developments"},
				BudgetAllocation: "60% established, 40% growth markets",
				RiskLevel:        "Medium",
				Tips: []string{
					"Diversify across property types and locations",
					"Consider off-plan developments for capital appreciation",
					"Monitor government policy impacts on property values",
					"Leverage financing options for portfolio expansion",
				},
			},
			Advanced: {
				Focus:            "Multi-market portfolio with currency diversification",
				PropertyTypes:    []string{"Commercial properties", "Luxury residential", "Development projects"},
				BudgetAllocation: "Strategic allocation based on market cycles",
				RiskLevel:        "Medium to High",
				Tips: []string{
					"Focus on commercial properties and large residential projects",
					"Consider REITs for passive income generation",
					"Analyze macro-economic indicators for timing",
					"Establish relationships with local developers and agents",
				},
			},
		},
		Markets: map[string]MarketInsight{
			"Dubai": {
				BestFor:          "International investors seeking liquidity",
				GrowthRate:       8.5,
				Outlook:          "positive",
				GrowthDrivers:    []string{"Tourism recovery", "Expo legacy", "Golden visa program"},
				Challenges:       []string{"Market maturity", "High competition"},
				RecommendedAreas: []string{"Business Bay", "Dubai Hills", "Mohammed Bin Rashid City"},
			},
			"Abu Dhabi": {
				BestFor:          "Investors seeking stability",
				GrowthRate:       6.2,
				Outlook:          "stable",
				GrowthDrivers:    []string{"Government investments", "Tourism growth", "Cultural development"},
				RecommendedAreas: []string{"Saadiyat Island", "Al Reem Island", "Yas Island"},
			},
			"Riyadh": {
				BestFor:          "Growth-focused investors with longer horizon",
				GrowthRate:       12.3,
				Outlook:          "very positive",
				GrowthDrivers:    []string{"Vision 2030", "NEOM project", "Economic diversification"},
				Challenges:       []string{"Market development", "Regulatory changes"},
				RecommendedAreas: []string{"King Abdullah Financial District", "Diplomatic Quarter", "Al Olaya"},
			},
			"Doha": {
				BestFor:          "Stable returns with government backing",
				Outlook:          "stable",
				GrowthDrivers:    []string{"World Cup legacy", "LNG revenues", "Infrastructure development"},
				Challenges:       []string{"Limited supply", "Expat dependency"},
				RecommendedAreas: []string{"The Pearl", "Lusail", "West Bay"},
			},
		},
	}
}

// StrategyFor returns the strategy for a level, defaulting to Beginner.
func (k *Knowledge) StrategyFor(level ExperienceLevel) Strategy {
	if s, ok := k.Strategies[level]; ok {
		return s
	}
	return k.Strategies[Beginner]
}

// Brief renders the knowledge relevant to a level and intent as prompt text.
// Market insights are only included for market and comparison questions.
func (k *Knowledge) Brief(level ExperienceLevel, intent Intent) string {
	if !level.IsValid() {
		level = Beginner
	}
	s := k.StrategyFor(level)

	var b strings.Builder
	fmt.Fprintf(&b, "Investor profile: %s\n", level.Label())
	fmt.Fprintf(&b, "Strategy focus: %s\n", s.Focus)
	fmt.Fprintf(&b, "Suggested property types: %s\n", strings.Join(s.PropertyTypes, ", "))
	fmt.Fprintf(&b, "Budget allocation: %s\n", s.BudgetAllocation)
	fmt.Fprintf(&b, "Risk appetite: %s\n", s.RiskLevel)
	for _, tip := range s.Tips {
		fmt.Fprintf(&b, "- %s\n", tip)
	}

	if intent == IntentMarketTrends || intent == IntentAreaComparison {
		cities := make([]string, 0, len(k.Markets))
		for c := range k.Markets {
			cities = append(cities, c)
		}
		sort.Strings(cities)
		b.WriteString("\nMarket insights:\n")
		for _, c := range cities {
			m := k.Markets[c]
			fmt.Fprintf(&b, "%s (%s outlook", c, m.Outlook)
			if m.GrowthRate > 0 {
				fmt.Fprintf(&b, ", %.1f%% growth", m.GrowthRate)
			}
			fmt.Fprintf(&b, "): best for %s. Drivers: %s.", m.BestFor, strings.Join(m.GrowthDrivers, ", "))
			if len(m.RecommendedAreas) > 0 {
				fmt.Fprintf(&b, " Recommended areas: %s.", strings.Join(m.RecommendedAreas, ", "))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
