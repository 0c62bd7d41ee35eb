package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nominalab/labor-costs/internal/entity"
)

// RateRepository reads the seeded social-charge reference rows.
type RateRepository interface {
	List(ctx context.Context) ([]entity.SocialChargeRate, error)
	TotalPercentage(ctx context.Context) (decimal.Decimal, error)
}

type rateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRateRepository(db *sql.DB, logger *slog.Logger) RateRepository {
	return &rateRepository{db: db, logger: logger}
}

func (r *rateRepository) List(ctx context.Context) ([]entity.SocialChargeRate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT concepto, porcentaje
		FROM cargas_sociales
		ORDER BY concepto`)
	if err != nil {
		r.logger.Error("failed to list social charge rates", "error", err)
		return nil, err
	}
	defer rows.Close()

	var rates []entity.SocialChargeRate
	for rows.Next() {
		var rate entity.SocialChargeRate
		if err := rows.Scan(&rate.Concepto, &rate.Porcentaje); err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

// TotalPercentage sums the seeded percentages in Go. SQLite stores NUMERIC
// columns as REAL, so SUM inside the engine accumulates binary float error
// (31.400000000000002 for the seeded rows); the individual values round-trip
// exactly and decimal addition keeps the total exact on both backends.
func (r *rateRepository) TotalPercentage(ctx context.Context) (decimal.Decimal, error) {
	rates, err := r.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, rate := range rates {
		total = total.Add(rate.Porcentaje)
	}
	return total, nil
}
