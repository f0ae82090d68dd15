package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		msg  string
		want Intent
	}{
		{"Find me something under 1.5M", IntentPropertySearch},
		{"What yield does JBR give?", IntentROIAnalysis},
		{"Where is the market heading?", IntentMarketTrends},
		{"Compare Marina and Downtown", IntentAreaComparison},
		{"Should I buy now?", IntentInvestmentAdvice},
		{"Tell me about this villa", IntentSpecificProperty},
		{"Hello there", IntentGeneralInquiry},
		// earlier intents win when several match
		{"Recommend a villa with good ROI", IntentPropertySearch},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyIntent(tt.msg), tt.msg)
	}
}

func TestSessionStore(t *testing.T) {
	st := NewSessionStore()
	a := st.Create("c1", Preferences{})
	b := st.Create("c2", Preferences{RiskTolerance: "low"})
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, st.Append(a.ID, RoleUser, "hi"))
	require.NoError(t, st.Append(a.ID, RoleAssistant, "hello"))
	assert.Len(t, a.History(), 2)
	assert.Empty(t, b.History())

	err := st.Append("nope", RoleUser, "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Len(t, st.List(), 2)
}

func TestHistoryIsACopy(t *testing.T) {
	st := NewSessionStore()
	s := st.Create("c1", Preferences{})
	require.NoError(t, st.Append(s.ID, RoleUser, "first"))

	h := s.History()
	h[0].Content = "changed"
	assert.Equal(t, "first", s.History()[0].Content)
}

func TestPreferencesJSON(t *testing.T) {
	var p Preferences
	err := json.Unmarshal([]byte(`{
		"budget_range": [1000000, 2500000],
		"preferred_areas": ["Palm Jumeirah"],
		"experience_level": "Experienced"
	}`), &p)
	require.NoError(t, err)
	assert.Equal(t, int64(2_500_000), p.Budget().Max)
	assert.Equal(t, []string{"Palm Jumeirah"}, p.Areas())
	assert.Equal(t, Intermediate, p.ExperienceLevel)

	err = json.Unmarshal([]byte(`{"experience_level": "guru"}`), &p)
	assert.Error(t, err)
}

func TestKnowledgeBrief(t *testing.T) {
	k := DefaultKnowledge()

	brief := k.Brief(Advanced, IntentGeneralInquiry)
	assert.Contains(t, brief, "Investor profile: Advanced")
	assert.Contains(t, brief, "Multi-market portfolio with currency diversification")
	assert.NotContains(t, brief, "Market insights")

	brief = k.Brief("", IntentMarketTrends)
	assert.Contains(t, brief, "Investor profile: Beginner")
	assert.Contains(t, brief, "Market insights")
	assert.Contains(t, brief, "Riyadh (very positive outlook, 12.3% growth)")
	assert.Contains(t, brief, "Recommended areas: The Pearl, Lusail, West Bay.")
}
