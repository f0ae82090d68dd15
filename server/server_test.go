package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulf-property-analyzer/chat"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/retrieval"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/utils"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _, user string) (string, error) {
	return "re: " + user, nil
}

func testOpportunities() []models.InvestmentOpportunity {
	return []models.InvestmentOpportunity{
		{
			PropertyID: "BAY-1", Title: "3BR Villa in Downtown Dubai", Area: "Downtown Dubai", City: "Dubai",
			PropertyType: models.Villa, Currency: "AED", Price: 2_400_000, SizeSqft: 3000, Bedrooms: 3,
			InvestmentGrade: "A EXCELLENT", OpportunityScore: 82, ROIPotential: "60.0%",
		},
		{
			PropertyID: "BAY-2", Title: "1BR Apartment in JBR", Area: "JBR", City: "Dubai",
			PropertyType: models.Apartment, Currency: "AED", Price: 1_100_000, SizeSqft: 800, Bedrooms: 1,
			InvestmentGrade: "B+ GOOD", OpportunityScore: 55, ROIPotential: "45.0%",
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := utils.NewNopLogger()
	opps := testOpportunities()

	ix := retrieval.NewIndex(logger)
	ix.IngestOpportunities(opps)
	sessions := chat.NewSessionStore()
	advisor := chat.NewAdvisor(sessions, ix, echoCompleter{}, nil, chat.AdvisorConfig{}, logger)

	srv := New(ix, advisor, sessions, Portfolio{
		Ranked:  services.Rank(opps),
		Summary: services.Aggregate(opps),
	}, logger, Options{})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]any
	assert.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/health", "", &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 2, body["documents"])
}

func TestQuery(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Results []models.Match `json:"results"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/v1/query",
		`{"query_text": "villa downtown", "filters": {"city": "Dubai"}, "top_k": 1}`, &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "BAY-1", body.Results[0].ID)
	assert.Positive(t, body.Results[0].RelevanceScore)
}

func TestQueryRejectsMalformedFilters(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		filters string
		field   string
	}{
		{`{"budget_range": [1, 2, 3]}`, "budget_range"},
		{`{"budget_range": [5, 1]}`, "budget_range"},
		{`{"max_price": -1}`, "max_price"},
	}
	for _, tt := range tests {
		var body struct {
			Results []models.Match `json:"results"`
			Error   string         `json:"error"`
		}
		status := doJSON(t, http.MethodPost, ts.URL+"/v1/query",
			`{"query_text": "villa", "filters": `+tt.filters+`}`, &body)
		assert.Equal(t, http.StatusBadRequest, status, tt.filters)
		assert.NotNil(t, body.Results, tt.filters)
		assert.Empty(t, body.Results, tt.filters)
		assert.Contains(t, body.Error, tt.field, tt.filters)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var created struct {
		SessionID string `json:"session_id"`
		Welcome   string `json:"welcome"`
	}
	status := doJSON(t, http.MethodPost, ts.URL+"/v1/sessions",
		`{"client_id": "c-1", "preferences": {"budget_range": [1000000, 3000000]}}`, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.SessionID)
	assert.Contains(t, created.Welcome, "AED 1,000,000 - 3,000,000")

	var reply chat.Reply
	status = doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+created.SessionID+"/messages",
		`{"message": "any villas downtown?"}`, &reply)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "re: any villas downtown?", reply.Text)
	assert.Equal(t, chat.IntentSpecificProperty, reply.Intent)
	assert.False(t, reply.Degraded)

	var view sessionView
	status = doJSON(t, http.MethodGet, ts.URL+"/v1/sessions/"+created.SessionID, "", &view)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "c-1", view.ClientID)
	require.Len(t, view.History, 3)
	assert.Equal(t, chat.RoleUser, view.History[1].Role)
}

func TestSessionErrors(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, ts.URL+"/v1/sessions/nope", "", nil))
	assert.Equal(t, http.StatusNotFound,
		doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/nope/messages", `{"message": "hi"}`, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, ts.URL+"/v1/sessions", `{}`, nil))
	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodPost, ts.URL+"/v1/sessions", `not json`, nil))

	var created struct {
		SessionID string `json:"session_id"`
	}
	require.Equal(t, http.StatusCreated,
		doJSON(t, http.MethodPost, ts.URL+"/v1/sessions", `{"client_id": "c-2"}`, &created))
	assert.Equal(t, http.StatusBadRequest,
		doJSON(t, http.MethodPost, ts.URL+"/v1/sessions/"+created.SessionID+"/messages", `{"message": " "}`, nil))
}

func TestPortfolioRoutes(t *testing.T) {
	ts := newTestServer(t)

	var summary models.PortfolioSummary
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/v1/portfolio/summary", "", &summary))
	assert.Equal(t, 2, summary.TotalOpportunities)
	assert.Equal(t, 1, summary.Exceptional)

	var top struct {
		Opportunities []models.InvestmentOpportunity `json:"opportunities"`
	}
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/v1/opportunities/top?n=1", "", &top))
	require.Len(t, top.Opportunities, 1)
	assert.Equal(t, "BAY-1", top.Opportunities[0].PropertyID)

	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/v1/opportunities/top?n=50", "", &top))
	assert.Len(t, top.Opportunities, 2)

	assert.Equal(t, http.StatusBadRequest, doJSON(t, http.MethodGet, ts.URL+"/v1/opportunities/top?n=0", "", nil))
}
