// Command laborcosts runs the ingestion pipeline over a directory of PDFs and
// writes the resulting cost report to an XLSX file, without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/costs"
	"github.com/nominalab/labor-costs/internal/export"
	"github.com/nominalab/labor-costs/internal/ingest"
	"github.com/nominalab/labor-costs/internal/llm"
	"github.com/nominalab/labor-costs/internal/pdftext"
	"github.com/nominalab/labor-costs/internal/repository"
)

func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir    = flag.String("dir", "", "directory of PDFs to ingest (required)")
		out    = flag.String("out", "", "output XLSX path (default: costes.xlsx next to -dir)")
		inmem  = flag.Bool("inmem", false, "use an in-memory SQLite fact store")
		worker = flag.String("worker", "", "limit the report to one worker code")
		from   = flag.Int("from", 0, "first year to include")
		to     = flag.Int("to", 0, "last year to include")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: -dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "costes.xlsx")
	}

	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *inmem {
		cfg.Database.DSN = ":memory:"
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open fact store", "error", err)
		os.Exit(1)
	}
	defer repository.Close(db, logger)

	if err := repository.NewSchema(db, logger).Init(ctx); err != nil {
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

	logger.Info("ingesting directory", "dir", *dir)
	results, err := pipeline.ProcessDir(ctx, *dir)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	stored, failedPages := 0, 0
	for _, res := range results {
		stored += res.FactsStored
		failedPages += len(res.Errors)
		for _, pe := range res.Errors {
			logger.Warn("page skipped", "file", pe.File, "page", pe.Page, "reason", pe.Reason)
		}
	}
	logger.Info("ingestion complete",
		"files", len(results),
		"facts_stored", stored,
		"pages_failed", failedPages,
	)

	aggregator := costs.NewAggregator(incomes, contributions, agreements, rates, logger)
	xlsxBytes, err := export.NewService(aggregator, logger).ExportCostsXLSX(ctx, *worker, *from, *to)
	if err != nil {
		logger.Error("failed to export cost report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write report", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("report written", "path", *out)
}
