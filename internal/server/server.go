// Package server exposes the ingestion pipeline, the cost aggregates, the
// XLSX export and the chat assistant over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/nominalab/labor-costs/internal/chat"
	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/costs"
	"github.com/nominalab/labor-costs/internal/entity"
	"github.com/nominalab/labor-costs/internal/ingest"
)

// The handler seams. Production wires the concrete pipeline, aggregator,
// export service, assistant and schema manager; tests substitute mocks.

type Ingestor interface {
	ProcessUpload(ctx context.Context, uploads []ingest.Upload) []ingest.Result
}

type CostReader interface {
	Compute(ctx context.Context, workerID string, fromYear, toYear int) (*costs.Summary, error)
	WorkersView(ctx context.Context) (*entity.WorkersView, error)
}

type Exporter interface {
	ExportCostsXLSX(ctx context.Context, workerID string, fromYear, toYear int) ([]byte, error)
}

type Assistant interface {
	Ask(ctx context.Context, history []chat.Message, question string) (string, error)
}

type Resetter interface {
	Reset(ctx context.Context) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	cfg       common.ServerConfig
	ingestor  Ingestor
	costs     CostReader
	exporter  Exporter
	assistant Assistant
	schema    Resetter
	db        Pinger
	logger    *slog.Logger
}

func NewServer(
	cfg common.ServerConfig,
	ingestor Ingestor,
	costReader CostReader,
	exporter Exporter,
	assistant Assistant,
	schema Resetter,
	db Pinger,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       cfg,
		ingestor:  ingestor,
		costs:     costReader,
		exporter:  exporter,
		assistant: assistant,
		schema:    schema,
		db:        db,
		logger:    logger,
	}
}

// Router builds the HTTP handler with all routes and CORS configured.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/documents/ingest", s.handleIngest).Methods(http.MethodPost)
	api.HandleFunc("/workers", s.handleWorkers).Methods(http.MethodGet)
	api.HandleFunc("/costs", s.handleCosts).Methods(http.MethodGet)
	api.HandleFunc("/costs/export", s.handleCostsExport).Methods(http.MethodGet)
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/admin/reset", s.handleReset).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	return c.Handler(router)
}
