package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/nominalab/labor-costs/internal/entity"
)

// AgreementRepository stores the one-row-per-year collective-agreement hours
// ceiling. First write for a year wins.
type AgreementRepository interface {
	Insert(ctx context.Context, fact entity.AgreementFact) error
	List(ctx context.Context) ([]entity.AgreementFact, error)
}

type agreementRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewAgreementRepository(db *sql.DB, logger *slog.Logger) AgreementRepository {
	return &agreementRepository{db: db, logger: logger}
}

func (r *agreementRepository) Insert(ctx context.Context, fact entity.AgreementFact) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO convenio (year, horas_convenio_anuales)
		VALUES ($1, $2)
		ON CONFLICT (year) DO NOTHING`,
		fact.Year, fact.Horas,
	)
	if err != nil {
		r.logger.Error("failed to insert agreement fact", "year", fact.Year, "error", err)
		return err
	}
	return nil
}

func (r *agreementRepository) List(ctx context.Context) ([]entity.AgreementFact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year, horas_convenio_anuales
		FROM convenio
		ORDER BY year`)
	if err != nil {
		r.logger.Error("failed to list agreement facts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var facts []entity.AgreementFact
	for rows.Next() {
		var f entity.AgreementFact
		if err := rows.Scan(&f.Year, &f.Horas); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
