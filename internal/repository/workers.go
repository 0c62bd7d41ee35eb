package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/nominalab/labor-costs/internal/entity"
)

// IncomeRepository stores worker-year income facts. Insert is first-write-wins
// over (worker_id, company_id, year): a duplicate key is silently ignored.
type IncomeRepository interface {
	Insert(ctx context.Context, fact entity.IncomeFact) error
	List(ctx context.Context) ([]entity.IncomeFact, error)
}

type incomeRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewIncomeRepository(db *sql.DB, logger *slog.Logger) IncomeRepository {
	return &incomeRepository{db: db, logger: logger}
}

func (r *incomeRepository) Insert(ctx context.Context, fact entity.IncomeFact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workers (worker_id, year, worker_name, percepcion_integra, company_id, company_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (worker_id, company_id, year) DO NOTHING`,
		fact.WorkerID, fact.Year, fact.WorkerName, fact.PercepcionIntegra, fact.CompanyID, fact.CompanyName,
	)
	if err != nil {
		r.logger.Error("failed to insert income fact", "worker_id", fact.WorkerID, "year", fact.Year, "error", err)
		return err
	}
	return nil
}

func (r *incomeRepository) List(ctx context.Context) ([]entity.IncomeFact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT worker_id, year, worker_name, percepcion_integra, company_id, company_name
		FROM workers
		ORDER BY worker_id, year`)
	if err != nil {
		r.logger.Error("failed to list income facts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var facts []entity.IncomeFact
	for rows.Next() {
		var f entity.IncomeFact
		if err := rows.Scan(&f.WorkerID, &f.Year, &f.WorkerName, &f.PercepcionIntegra, &f.CompanyID, &f.CompanyName); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
