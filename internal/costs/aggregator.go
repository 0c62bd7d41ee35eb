// Package costs computes the derived hourly labor cost per worker per year:
//
//	(Σ percepción íntegra + (Σ base contingencias / 12) × (Σ cargas / 100)) / horas convenio
//
// A (worker, year) missing any of its three inputs is reported as incomplete,
// never computed with a default: a fabricated cost feeding advisory financial
// output is the one bug this package exists to prevent.
package costs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nominalab/labor-costs/internal/entity"
	"github.com/nominalab/labor-costs/internal/repository"
)

// Document kinds named in incomplete results, phrased the way the advisory
// output refers to them.
const (
	MissingIncome       = "modelo 190 / 10T"
	MissingContribution = "RNT"
	MissingAgreement    = "convenio colectivo"
)

var twelve = decimal.NewFromInt(12)
var hundred = decimal.NewFromInt(100)

type Aggregator struct {
	incomes       repository.IncomeRepository
	contributions repository.ContributionRepository
	agreements    repository.AgreementRepository
	rates         repository.RateRepository
	logger        *slog.Logger
}

func NewAggregator(
	incomes repository.IncomeRepository,
	contributions repository.ContributionRepository,
	agreements repository.AgreementRepository,
	rates repository.RateRepository,
	logger *slog.Logger,
) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		incomes:       incomes,
		contributions: contributions,
		agreements:    agreements,
		rates:         rates,
		logger:        logger,
	}
}

// HourlyCosts returns one aggregate per (worker, year) present in the income
// facts, ordered by worker then year.
func (a *Aggregator) HourlyCosts(ctx context.Context) ([]entity.WorkerCost, error) {
	incomes, err := a.incomes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list income facts: %w", err)
	}
	contributions, err := a.contributions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contribution facts: %w", err)
	}
	agreements, err := a.agreements.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agreement facts: %w", err)
	}
	rate, err := a.rates.TotalPercentage(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum social charge rates: %w", err)
	}

	type key struct {
		workerID string
		year     int
	}

	incomeSum := make(map[key]decimal.Decimal)
	names := make(map[key]string)
	var order []key
	for _, f := range incomes {
		k := key{f.WorkerID, f.Year}
		if _, seen := incomeSum[k]; !seen {
			order = append(order, k)
			names[k] = f.WorkerName
		}
		incomeSum[k] = incomeSum[k].Add(f.PercepcionIntegra)
	}
	baseSum := make(map[key]decimal.Decimal)
	baseSeen := make(map[key]bool)
	for _, f := range contributions {
		k := key{f.WorkerID, f.Year}
		baseSum[k] = baseSum[k].Add(f.Base)
		baseSeen[k] = true
	}

	// Workers seen only on an RNT still get a row, flagged as lacking the
	// income document, rather than disappearing from the view.
	incomeSeen := make(map[key]bool, len(incomeSum))
	for k := range incomeSum {
		incomeSeen[k] = true
	}
	for k := range baseSum {
		if !incomeSeen[k] {
			order = append(order, k)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].workerID != order[j].workerID {
			return order[i].workerID < order[j].workerID
		}
		return order[i].year < order[j].year
	})

	hoursByYear := make(map[int]decimal.Decimal)
	for _, f := range agreements {
		hoursByYear[f.Year] = f.Horas
	}

	out := make([]entity.WorkerCost, 0, len(order))
	for _, k := range order {
		row := entity.WorkerCost{
			WorkerID:   k.workerID,
			Year:       k.year,
			WorkerName: names[k],
			Income:     incomeSum[k],
			Rate:       rate,
		}
		if !incomeSeen[k] {
			row.Missing = append(row.Missing, MissingIncome)
		}
		if baseSeen[k] {
			base := baseSum[k]
			row.Base = &base
		} else {
			row.Missing = append(row.Missing, MissingContribution)
		}
		if hours, ok := hoursByYear[k.year]; ok && !hours.IsZero() {
			row.Hours = &hours
		} else {
			row.Missing = append(row.Missing, MissingAgreement)
		}

		if len(row.Missing) == 0 {
			charges := row.Base.Div(twelve).Mul(rate.Div(hundred))
			cost := row.Income.Add(charges).Div(*row.Hours)
			row.HourlyCost = &cost
		} else {
			a.logger.Info("costs.incomplete",
				"worker_id", k.workerID, "year", k.year, "missing", row.Missing)
		}
		out = append(out, row)
	}
	return out, nil
}

// Summary is the aggregated cost view over one or all workers within an
// optional year window.
type Summary struct {
	Rows       []entity.WorkerCost `json:"rows"`
	TotalCost  decimal.Decimal     `json:"total_cost"`  // annual cost over complete rows
	TotalHours decimal.Decimal     `json:"total_hours"` // agreement hours over complete rows
	Incomplete int                 `json:"incomplete"`  // rows lacking required inputs
}

// Compute filters the hourly-cost aggregates by worker and year window
// (zero values leave the dimension unfiltered) and totals the complete rows.
// Workers with missing inputs stay in Rows, flagged, and are excluded from
// the totals.
func (a *Aggregator) Compute(ctx context.Context, workerID string, fromYear, toYear int) (*Summary, error) {
	rows, err := a.HourlyCosts(ctx)
	if err != nil {
		return nil, err
	}

	s := &Summary{}
	for _, row := range rows {
		if workerID != "" && row.WorkerID != workerID {
			continue
		}
		if fromYear != 0 && row.Year < fromYear {
			continue
		}
		if toYear != 0 && row.Year > toYear {
			continue
		}
		s.Rows = append(s.Rows, row)
		if !row.Complete() {
			s.Incomplete++
			continue
		}
		s.TotalCost = s.TotalCost.Add(row.HourlyCost.Mul(*row.Hours))
		s.TotalHours = s.TotalHours.Add(*row.Hours)
	}
	return s, nil
}

// WorkersView assembles the aggregate consumed by the tabular display and the
// chat assistant.
func (a *Aggregator) WorkersView(ctx context.Context) (*entity.WorkersView, error) {
	workers, err := a.incomes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list income facts: %w", err)
	}
	sums, err := a.contributions.SumsByWorkerPeriod(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum contribution bases: %w", err)
	}
	costs, err := a.HourlyCosts(ctx)
	if err != nil {
		return nil, err
	}
	return &entity.WorkersView{
		Trabajadores:         workers,
		ContingenciasComunes: sums,
		CosteHora:            costs,
	}, nil
}
