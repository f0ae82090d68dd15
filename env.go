package main

import (
	"context"

	"github.com/rotisserie/eris"

	"gulf-property-analyzer/config"
	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/storage"
	"gulf-property-analyzer/utils"
)

// loadRegistry builds the benchmark registry from config, honouring the
// configured default market.
func loadRegistry(c *config.Config) (*market.Registry, error) {
	reg, err := market.LoadRegistry(c.Analysis.BenchmarkFile)
	if err != nil {
		return nil, err
	}
	key := c.Analysis.DefaultMarket
	if key == "" || key == reg.Default().Market {
		return reg, nil
	}

	benchmarks := make([]*market.Benchmark, 0, len(reg.Markets()))
	for _, k := range reg.Markets() {
		b, _ := reg.Get(k)
		benchmarks = append(benchmarks, b)
	}
	return market.NewRegistry(key, benchmarks...)
}

// openStore opens and migrates the configured SQL store.
func openStore(ctx context.Context, c *config.Config, logger *utils.Logger) (*storage.SQLStore, error) {
	var (
		st  *storage.SQLStore
		err error
	)
	switch c.Store.Driver {
	case "postgres":
		st, err = storage.OpenPostgres(ctx, c.DSN(), logger)
	case "sqlite":
		st, err = storage.OpenSQLite(c.Store.SQLite.Path, logger)
	default:
		return nil, eris.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// loadOpportunities returns the ranked opportunities and summary of the last
// analysis, from the database when fromStore is set, otherwise from the results file.
func loadOpportunities(ctx context.Context, c *config.Config, fromStore bool, logger *utils.Logger) ([]models.InvestmentOpportunity, models.PortfolioSummary, error) {
	if !fromStore {
		r, err := storage.ReadResults(c.Output.ResultsPath)
		if err != nil {
			return nil, models.PortfolioSummary{}, err
		}
		ranked := services.Rank(r.Opportunities)
		return ranked, r.PortfolioStats, nil
	}

	st, err := openStore(ctx, c, logger)
	if err != nil {
		return nil, models.PortfolioSummary{}, err
	}
	defer st.Close()

	opps, err := st.FetchOpportunities(ctx)
	if err != nil {
		return nil, models.PortfolioSummary{}, err
	}
	summary, ok, err := st.LatestSummary(ctx)
	if err != nil {
		return nil, models.PortfolioSummary{}, err
	}
	if !ok {
		summary = services.Aggregate(opps)
	}
	return opps, summary, nil
}
