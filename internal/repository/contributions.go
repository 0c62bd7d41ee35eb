package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/nominalab/labor-costs/internal/entity"
)

// ContributionRepository stores RNT contribution-base facts. Uniqueness spans
// the full tuple, so distinct entries for the same worker/period accumulate
// while exact duplicates collapse.
type ContributionRepository interface {
	Insert(ctx context.Context, fact entity.ContributionFact) error
	List(ctx context.Context) ([]entity.ContributionFact, error)
	SumsByWorkerPeriod(ctx context.Context) ([]entity.ContributionPeriodSum, error)
}

type contributionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewContributionRepository(db *sql.DB, logger *slog.Logger) ContributionRepository {
	return &contributionRepository{db: db, logger: logger}
}

func (r *contributionRepository) Insert(ctx context.Context, fact entity.ContributionFact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contingencias_comunes (
			worker_id, year, base_contingencias_comunes, dias_cotizados,
			periodo, company_id, company_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (
			worker_id, year, periodo, base_contingencias_comunes,
			dias_cotizados, company_id, company_name
		) DO NOTHING`,
		fact.WorkerID, fact.Year, fact.Base, fact.DiasCotizados, fact.Periodo, fact.CompanyID, fact.CompanyName,
	)
	if err != nil {
		r.logger.Error("failed to insert contribution fact", "worker_id", fact.WorkerID, "periodo", fact.Periodo, "error", err)
		return err
	}
	return nil
}

func (r *contributionRepository) List(ctx context.Context) ([]entity.ContributionFact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT worker_id, year, base_contingencias_comunes, dias_cotizados, periodo, company_id, company_name
		FROM contingencias_comunes
		ORDER BY worker_id, year, periodo`)
	if err != nil {
		r.logger.Error("failed to list contribution facts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var facts []entity.ContributionFact
	for rows.Next() {
		var f entity.ContributionFact
		if err := rows.Scan(&f.WorkerID, &f.Year, &f.Base, &f.DiasCotizados, &f.Periodo, &f.CompanyID, &f.CompanyName); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func (r *contributionRepository) SumsByWorkerPeriod(ctx context.Context) ([]entity.ContributionPeriodSum, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT worker_id, periodo, SUM(base_contingencias_comunes) AS base_contingencias_comunes
		FROM contingencias_comunes
		GROUP BY worker_id, periodo
		ORDER BY worker_id, periodo`)
	if err != nil {
		r.logger.Error("failed to sum contribution bases", "error", err)
		return nil, err
	}
	defer rows.Close()

	var sums []entity.ContributionPeriodSum
	for rows.Next() {
		var s entity.ContributionPeriodSum
		if err := rows.Scan(&s.WorkerID, &s.Periodo, &s.Base); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}
