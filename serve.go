package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gulf-property-analyzer/chat"
	"gulf-property-analyzer/llm"
	"gulf-property-analyzer/retrieval"
	"gulf-property-analyzer/server"
	"gulf-property-analyzer/services"
	"gulf-property-analyzer/utils"
)

var (
	servePort      int
	serveFromStore bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the query and advisory chat API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := utils.NewLogger()

		ranked, summary, err := loadOpportunities(ctx, cfg, serveFromStore, logger)
		if err != nil {
			return err
		}

		ix := retrieval.NewIndex(logger)
		ix.IngestOpportunities(ranked)

		if cfg.Anthropic.Key == "" {
			zap.L().Warn("no anthropic key configured, chat replies will use the data-only fallback")
		}
		temperature := cfg.Anthropic.Temperature
		completer := llm.NewClient(llm.Config{
			APIKey:      cfg.Anthropic.Key,
			Model:       cfg.Anthropic.Model,
			MaxTokens:   cfg.Anthropic.MaxTokens,
			Temperature: &temperature,
			BaseURL:     cfg.Anthropic.BaseURL,
		}, logger)

		sessions := chat.NewSessionStore()
		advisor := chat.NewAdvisor(sessions, ix, completer, nil, chat.AdvisorConfig{
			Timeout:    cfg.Anthropic.Timeout,
			Retries:    cfg.Anthropic.Retries,
			RetryDelay: time.Second,
			TopK:       cfg.Retrieval.TopK,
		}, logger)

		api := server.New(ix, advisor, sessions, server.Portfolio{
			Ranked:  services.Rank(ranked),
			Summary: summary,
		}, logger, server.Options{
			TopK:        cfg.Retrieval.TopK,
			CORSOrigins: cfg.Server.CORSOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Int("documents", ix.Len()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveFromStore, "from-store", false, "load opportunities from the database instead of the results file")
	rootCmd.AddCommand(serveCmd)
}
