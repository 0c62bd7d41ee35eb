package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nominalab/labor-costs/internal/chat"
	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/costs"
	"github.com/nominalab/labor-costs/internal/export"
	"github.com/nominalab/labor-costs/internal/ingest"
	"github.com/nominalab/labor-costs/internal/llm"
	"github.com/nominalab/labor-costs/internal/pdftext"
	"github.com/nominalab/labor-costs/internal/repository"
	"github.com/nominalab/labor-costs/internal/server"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open fact store", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.HealthCheck(ctx, db); err != nil {
		logger.Error("fact store health check failed", "error", err)
		os.Exit(1)
	}

	schema := repository.NewSchema(db, logger)
	if err := schema.Init(ctx); err != nil {
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}

	incomes := repository.NewIncomeRepository(db, logger)
	contributions := repository.NewContributionRepository(db, logger)
	agreements := repository.NewAgreementRepository(db, logger)
	rates := repository.NewRateRepository(db, logger)

	completer, err := llm.NewCompleter(cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to build completion client", "error", err)
		os.Exit(1)
	}

	extractor := llm.NewExtractor(completer, logger)
	pipeline := ingest.NewPipeline(pdftext.NewFileSource(), extractor, incomes, contributions, agreements, logger)
	aggregator := costs.NewAggregator(incomes, contributions, agreements, rates, logger)
	exporter := export.NewService(aggregator, logger)
	assistant := chat.NewAssistant(completer, aggregator, logger)

	srv := server.NewServer(cfg.Server, pipeline, aggregator, exporter, assistant, schema, db, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("stopped")
}
