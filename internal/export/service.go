package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nominalab/labor-costs/internal/costs"
)

// Service produces XLSX bytes for the cost report.
type Service struct {
	aggregator *costs.Aggregator
	logger     *slog.Logger
}

func NewService(aggregator *costs.Aggregator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{aggregator: aggregator, logger: logger}
}

// ExportCostsXLSX returns an XLSX workbook with one row per (worker, year)
// aggregate. Incomplete rows are included with the missing document kinds in
// place of a cost. workerID and the year window filter the same way the JSON
// cost endpoint does; zero values mean unfiltered.
func (s *Service) ExportCostsXLSX(ctx context.Context, workerID string, fromYear, toYear int) ([]byte, error) {
	start := time.Now()

	summary, err := s.aggregator.Compute(ctx, workerID, fromYear, toYear)
	if err != nil {
		return nil, fmt.Errorf("compute costs: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Costes"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	defaultSheet := "Sheet1"
	if idx, _ := f.GetSheetIndex(defaultSheet); idx != -1 && defaultSheet != sheet {
		_ = f.DeleteSheet(defaultSheet)
	}

	headers := []string{
		"Trabajador",
		"Nombre",
		"Ejercicio",
		"Percepción íntegra",
		"Base contingencias",
		"Cargas sociales (%)",
		"Horas convenio",
		"Coste por hora",
		"Documentos pendientes",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range summary.Rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.WorkerID)
		write(2, r.WorkerName)
		write(3, r.Year)
		write(4, r.Income.StringFixed(2))
		if r.Base != nil {
			write(5, r.Base.StringFixed(2))
		}
		write(6, r.Rate.StringFixed(2))
		if r.Hours != nil {
			write(7, r.Hours.String())
		}
		if r.HourlyCost != nil {
			write(8, r.HourlyCost.StringFixed(2))
		} else {
			write(9, strings.Join(r.Missing, ", "))
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "G", 18)
	_ = f.SetColWidth(sheet, "H", "H", 14)
	_ = f.SetColWidth(sheet, "I", "I", 36)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(summary.Rows),
		"incomplete", summary.Incomplete,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
