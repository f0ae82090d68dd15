package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"gulf-property-analyzer/scraper/bayut"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/storage"
	"gulf-property-analyzer/utils"
)

var (
	scrapeOut    string
	scrapeMarket string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape for-sale listings from Bayut into a listings JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := utils.NewLogger()
		scrapeCfg := cfg.Scrape
		if scrapeMarket != "" {
			scrapeCfg.Market = scrapeMarket
		}
		logger.Info("[scrape] Config: market %s | pages: %d | listings/page: %d | concurrency: %d | rate: %dms",
			scrapeCfg.Market, scrapeCfg.Pages, scrapeCfg.ListingsPerPage, scrapeCfg.MaxConcurrency, scrapeCfg.RateLimitMs)

		registry, err := loadRegistry(cfg)
		if err != nil {
			return err
		}

		raw, err := bayut.New(scrapeCfg, logger).Scrape(ctx)
		if err != nil {
			logger.Error("[scrape] Scrape failed: %v", err)
		}
		if len(raw) == 0 {
			return eris.New("scrape: no listings were scraped")
		}

		rawWriter, err := storage.NewCSVWriter(cfg.Output.RawPath)
		if err != nil {
			return err
		}
		defer rawWriter.Close()
		if err := rawWriter.WriteRaw(raw); err != nil {
			logger.Error("[scrape] Raw CSV write failed: %v", err)
		} else {
			logger.Info("[scrape] Raw listings saved to %s", cfg.Output.RawPath)
		}

		listings := services.NewCleaner(logger, registry).Clean(raw)
		if len(listings) == 0 {
			return eris.New("scrape: all listings were dropped during cleaning")
		}

		if err := storage.WriteListings(scrapeOut, listings); err != nil {
			return err
		}
		logger.Info("[scrape] %d clean listings written to %s", len(listings), scrapeOut)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "data/listings.json", "output listings JSON file")
	scrapeCmd.Flags().StringVar(&scrapeMarket, "market", "", "market to scrape (default from config)")
	rootCmd.AddCommand(scrapeCmd)
}
