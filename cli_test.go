package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gulf-property-analyzer/config"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/storage"
	"gulf-property-analyzer/utils"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	c := &config.Config{}
	c.Store.Driver = "sqlite"
	c.Store.SQLite.Path = filepath.Join(dir, "test.db")
	c.Output.ResultsPath = filepath.Join(dir, "results.json")
	return c
}

func TestLoadRegistryHonoursDefaultMarket(t *testing.T) {
	c := testConfig(t)

	reg, err := loadRegistry(c)
	require.NoError(t, err)
	assert.Equal(t, "dubai", reg.Default().Market)

	c.Analysis.DefaultMarket = "riyadh"
	reg, err = loadRegistry(c)
	require.NoError(t, err)
	assert.Equal(t, "riyadh", reg.Default().Market)
	assert.Len(t, reg.Markets(), 8)

	c.Analysis.DefaultMarket = "atlantis"
	_, err = loadRegistry(c)
	assert.Error(t, err)
}

func TestPersistAndLoadFromStore(t *testing.T) {
	c := testConfig(t)
	ctx := context.Background()
	logger := utils.NewNopLogger()

	opps := []models.InvestmentOpportunity{
		{PropertyID: "A", Title: "low", Price: 900_000, SizeSqft: 800, OpportunityScore: 30, InvestmentGrade: "C+ MODERATE"},
		{PropertyID: "B", Title: "high", Price: 1_200_000, SizeSqft: 1000, OpportunityScore: 70, InvestmentGrade: "A EXCELLENT"},
	}
	ranked := services.Rank(opps)
	summary := services.Aggregate(ranked)

	st, err := openStore(ctx, c, logger)
	require.NoError(t, err)
	require.NoError(t, persist(ctx, st, ranked, summary))
	require.NoError(t, st.Close())

	got, gotSummary, err := loadOpportunities(ctx, c, true, logger)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].PropertyID)
	assert.Equal(t, summary, gotSummary)
}

func TestPersistEmptyRunReplacesStoredOpportunities(t *testing.T) {
	c := testConfig(t)
	ctx := context.Background()
	logger := utils.NewNopLogger()

	opps := []models.InvestmentOpportunity{
		{PropertyID: "A", Title: "kept", Price: 900_000, SizeSqft: 800, OpportunityScore: 30, InvestmentGrade: "C+ MODERATE"},
	}
	st, err := openStore(ctx, c, logger)
	require.NoError(t, err)
	require.NoError(t, persist(ctx, st, opps, services.Aggregate(opps)))
	require.NoError(t, persist(ctx, st, nil, services.Aggregate(nil)))
	require.NoError(t, st.Close())

	got, summary, err := loadOpportunities(ctx, c, true, logger)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, summary.TotalOpportunities)
}

func TestLoadFromResultsFile(t *testing.T) {
	c := testConfig(t)
	opps := []models.InvestmentOpportunity{
		{PropertyID: "A", OpportunityScore: 10},
		{PropertyID: "B", OpportunityScore: 90},
	}
	require.NoError(t, storage.WriteResults(c.Output.ResultsPath, storage.Results{
		Opportunities:  opps,
		PortfolioStats: services.Aggregate(opps),
	}))

	got, summary, err := loadOpportunities(context.Background(), c, false, utils.NewNopLogger())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].PropertyID)
	assert.Equal(t, 2, summary.TotalOpportunities)
}

func TestRootRejectsUnreadableConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0o644))

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
