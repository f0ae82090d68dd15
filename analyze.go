package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"gulf-property-analyzer/market"
	"gulf-property-analyzer/models"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/storage"
	"gulf-property-analyzer/utils"
)

var (
	analyzeInput   string
	analyzeNoStore bool
	analyzeQuiet   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a listings file and rank investment opportunities",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := utils.NewLogger()
		started := time.Now()

		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		listings, err := storage.NewJSONSource(analyzeInput).Listings(ctx)
		if err != nil {
			return err
		}
		logger.Info("[analyze] Loaded %d listings from %s", len(listings), analyzeInput)

		analyzer := services.NewAnalyzer(registry, market.DefaultRates, logger, services.AnalyzerOptions{
			Workers:  cfg.Analysis.Workers,
			Observer: services.NewLogObserver(logger),
		})
		result, err := analyzer.AnalyzeBatch(ctx, listings)
		if err != nil {
			return err
		}
		for _, f := range result.Failures {
			logger.Warn("[analyze] Skipped listing %d (%s): %s", f.Index, f.ListingID, f.Message)
		}

		ranked := services.Rank(result.Opportunities)
		summary := services.Aggregate(ranked)

		csvWriter, err := storage.NewCSVWriter(cfg.Output.CSVPath)
		if err != nil {
			return err
		}
		defer csvWriter.Close()
		if err := csvWriter.WriteOpportunities(ctx, ranked); err != nil {
			logger.Error("[analyze] CSV write failed: %v", err)
		} else {
			logger.Info("[analyze] Opportunities saved to %s", cfg.Output.CSVPath)
		}

		if err := storage.WriteResults(cfg.Output.ResultsPath, storage.Results{
			Opportunities:     ranked,
			PortfolioStats:    summary,
			AnalysisTimestamp: started.UTC(),
			Failures:          result.Failures,
		}); err != nil {
			logger.Error("[analyze] Results export failed: %v", err)
		} else {
			logger.Info("[analyze] Analysis data saved to %s", cfg.Output.ResultsPath)
		}

		if !analyzeNoStore {
			st, err := openStore(ctx, cfg, logger)
			if err != nil {
				logger.Error("[analyze] Database unavailable: %v", err)
			} else {
				if err := persist(ctx, st, ranked, summary); err != nil {
					logger.Error("[analyze] Database write failed: %v", err)
				}
				_ = st.Close()
			}
		}

		opts := services.ReportOptions{TopN: cfg.Analysis.TopN, GeneratedAt: started}
		if err := writeReport(cfg.Output.ReportPath, ranked, summary, opts); err != nil {
			logger.Error("[analyze] Report write failed: %v", err)
		} else {
			logger.Info("[analyze] Investment report saved to %s", cfg.Output.ReportPath)
		}

		if !analyzeQuiet {
			if err := services.RenderReport(cmd.OutOrStdout(), ranked, summary, opts); err != nil {
				return err
			}
		}

		logger.Info("[analyze] Done: %d opportunities, %d rejected, in %v",
			len(ranked), len(result.Failures), time.Since(started).Round(time.Millisecond))
		return nil
	},
}

type resultStore interface {
	storage.OpportunityWriter
	storage.SummaryWriter
}

func persist(ctx context.Context, st resultStore, ranked []models.InvestmentOpportunity, summary models.PortfolioSummary) error {
	if err := st.WriteOpportunities(ctx, ranked); err != nil {
		return err
	}
	return st.WriteSummary(ctx, summary)
}

func writeReport(path string, ranked []models.InvestmentOpportunity, summary models.PortfolioSummary, opts services.ReportOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "report: create output dir")
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %q", path)
	}
	if err := services.RenderReport(f, ranked, summary, opts); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "report: close")
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "data/listings.json", "listings JSON file")
	analyzeCmd.Flags().BoolVar(&analyzeNoStore, "no-store", false, "skip writing to the database")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "do not print the report")
	rootCmd.AddCommand(analyzeCmd)
}
