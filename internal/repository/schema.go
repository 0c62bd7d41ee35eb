package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// The DDL sticks to the portable subset both backends accept. Uniqueness keys
// are load-bearing: every insert is ON CONFLICT DO NOTHING against them, which
// is what makes re-ingesting the same documents a no-op.
var createStatements = []string{
	`CREATE TABLE IF NOT EXISTS workers (
		worker_id VARCHAR(100),
		year INT NOT NULL,
		worker_name VARCHAR(255) NOT NULL,
		percepcion_integra NUMERIC(10, 2) NOT NULL,
		company_id VARCHAR(100) NOT NULL,
		company_name VARCHAR(255) NOT NULL,
		UNIQUE(worker_id, company_id, year)
	)`,
	`CREATE TABLE IF NOT EXISTS contingencias_comunes (
		worker_id VARCHAR(100),
		year INT NOT NULL,
		base_contingencias_comunes NUMERIC(24, 4) NOT NULL,
		dias_cotizados INT NOT NULL,
		periodo VARCHAR(10) NOT NULL,
		company_id VARCHAR(100) NOT NULL,
		company_name VARCHAR(255) NOT NULL,
		UNIQUE(worker_id, year, periodo, base_contingencias_comunes, dias_cotizados, company_id, company_name)
	)`,
	`CREATE TABLE IF NOT EXISTS convenio (
		year INT NOT NULL,
		horas_convenio_anuales NUMERIC(10, 2) NOT NULL,
		UNIQUE(year)
	)`,
	`CREATE TABLE IF NOT EXISTS cargas_sociales (
		concepto VARCHAR(100) PRIMARY KEY,
		porcentaje NUMERIC(5, 2) NOT NULL
	)`,
}

// Statutory employer surcharge components, seeded once and immutable
// afterward. Their sum (31.40) is the rate applied in the cost formula.
const seedRates = `INSERT INTO cargas_sociales (concepto, porcentaje) VALUES
	('Contingencias comunes', 23.60),
	('Formación profesional + Desempleo', 5.50),
	('FOGASA', 0.80),
	('ÍT', 1.50)
	ON CONFLICT (concepto) DO NOTHING`

var dropStatements = []string{
	`DROP TABLE IF EXISTS workers`,
	`DROP TABLE IF EXISTS contingencias_comunes`,
	`DROP TABLE IF EXISTS convenio`,
	`DROP TABLE IF EXISTS cargas_sociales`,
}

// Schema manages table creation and the administrative full reset.
type Schema struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSchema(db *sql.DB, logger *slog.Logger) *Schema {
	if logger == nil {
		logger = slog.Default()
	}
	return &Schema{db: db, logger: logger}
}

// Init creates missing tables and seeds the social-charge reference rows.
func (s *Schema) Init(ctx context.Context) error {
	for _, stmt := range createStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, seedRates); err != nil {
		return fmt.Errorf("seed cargas_sociales: %w", err)
	}
	s.logger.Info("schema.init.ok")
	return nil
}

// Reset drops and recreates all tables. Administrative re-seeding only; there
// is no row-level update or delete path.
func (s *Schema) Reset(ctx context.Context) error {
	for _, stmt := range dropStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}
	s.logger.Warn("schema.reset.dropped_all_tables")
	return s.Init(ctx)
}
