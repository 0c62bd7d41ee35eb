package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/entity"
)

func newTestStore(t *testing.T) (context.Context, *slog.Logger, *sql.DB) {
	t.Helper()
	ctx := context.Background()
	logger := slog.Default()
	db, err := Open(ctx, common.DatabaseConfig{DSN: ":memory:"}, logger)
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := NewSchema(db, logger).Init(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return ctx, logger, db
}

func TestTotalPercentageIsExactOnSQLite(t *testing.T) {
	ctx, logger, db := newTestStore(t)

	total, err := NewRateRepository(db, logger).TotalPercentage(ctx)
	if err != nil {
		t.Fatalf("TotalPercentage: %v", err)
	}
	// SQLite keeps NUMERIC values as REAL; summing in the engine yields
	// 31.400000000000002. The total must be the exact seeded 31.4.
	if !total.Equal(decimal.RequireFromString("31.4")) {
		t.Errorf("rate total = %s, want exactly 31.4", total)
	}
	if total.String() != "31.4" {
		t.Errorf("rate total renders as %q, want \"31.4\"", total)
	}
}

func TestDuplicateInsertsCollapseOnSQLite(t *testing.T) {
	ctx, logger, db := newTestStore(t)

	incomes := NewIncomeRepository(db, logger)
	fact := entity.IncomeFact{
		WorkerID:          "GAFOJ",
		Year:              2022,
		WorkerName:        "GARCIA FONTECHA, JOSE",
		PercepcionIntegra: decimal.RequireFromString("24214.44"),
		CompanyID:         "B12345678",
		CompanyName:       "ACME SL",
	}
	if err := incomes.Insert(ctx, fact); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := incomes.Insert(ctx, fact); err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	facts, err := incomes.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d income rows after duplicate insert, want 1", len(facts))
	}
	if !facts[0].PercepcionIntegra.Equal(fact.PercepcionIntegra) {
		t.Errorf("income = %s, want %s", facts[0].PercepcionIntegra, fact.PercepcionIntegra)
	}

	contributions := NewContributionRepository(db, logger)
	cfact := entity.ContributionFact{
		WorkerID:      "GAFOJ",
		Year:          2022,
		Base:          decimal.RequireFromString("3000.00"),
		DiasCotizados: 30,
		Periodo:       "01-12-2022",
		CompanyID:     "B12345678",
		CompanyName:   "ACME SL",
	}
	if err := contributions.Insert(ctx, cfact); err != nil {
		t.Fatalf("first contribution insert: %v", err)
	}
	if err := contributions.Insert(ctx, cfact); err != nil {
		t.Fatalf("duplicate contribution insert: %v", err)
	}
	cfacts, err := contributions.List(ctx)
	if err != nil {
		t.Fatalf("list contributions: %v", err)
	}
	if len(cfacts) != 1 {
		t.Fatalf("got %d contribution rows after duplicate insert, want 1", len(cfacts))
	}
}
