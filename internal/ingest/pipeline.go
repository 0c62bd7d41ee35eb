// Package ingest orchestrates the document pipeline: page text extraction,
// whole-document classification, per-page field extraction, and fact storage.
// A batch groups the files of one upload and carries the state shared between
// them; page-level failures are recorded and logged, never fatal to the batch.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nominalab/labor-costs/internal/classify"
	"github.com/nominalab/labor-costs/internal/entity"
	"github.com/nominalab/labor-costs/internal/llm"
	"github.com/nominalab/labor-costs/internal/pdftext"
	"github.com/nominalab/labor-costs/internal/repository"
)

// PageError records why one page of one file yielded no facts.
type PageError struct {
	File   string `json:"file"`
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// Result summarizes the processing of a single file.
type Result struct {
	File        string           `json:"file"`
	DocType     classify.DocType `json:"doc_type"`
	Pages       int              `json:"pages"`
	FactsStored int              `json:"facts_stored"`
	Errors      []PageError      `json:"errors,omitempty"`
}

type Pipeline struct {
	source        pdftext.Source
	extractor     *llm.Extractor
	incomes       repository.IncomeRepository
	contributions repository.ContributionRepository
	agreements    repository.AgreementRepository
	logger        *slog.Logger
}

func NewPipeline(
	source pdftext.Source,
	extractor *llm.Extractor,
	incomes repository.IncomeRepository,
	contributions repository.ContributionRepository,
	agreements repository.AgreementRepository,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:        source,
		extractor:     extractor,
		incomes:       incomes,
		contributions: contributions,
		agreements:    agreements,
		logger:        logger,
	}
}

// Batch carries the state shared across the files of one upload: whether an
// agreement row was already stored in this batch, and the most recent fiscal
// year seen on an income or contribution page. Agreement pages that print no
// validity year borrow that year. A Batch is not safe for concurrent use.
type Batch struct {
	p             *Pipeline
	agreementDone bool
	lastSeenYear  int
}

// NewBatch starts a fresh upload batch.
func (p *Pipeline) NewBatch() *Batch {
	return &Batch{p: p}
}

// ProcessFile reads one PDF from disk and feeds it through the batch.
func (b *Batch) ProcessFile(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	doc, err := b.p.source.Extract(path)
	if err != nil {
		b.p.logger.Error("ingest.file.unreadable", "file", name, "error", err)
		return Result{File: name, DocType: classify.Unknown,
			Errors: []PageError{{File: name, Page: 0, Reason: err.Error()}}}
	}
	return b.ProcessDocument(ctx, name, doc)
}

// ProcessDocument classifies the whole document once, then extracts facts from
// each page under that label. Empty pages and pages that fail extraction are
// skipped with a recorded reason.
func (b *Batch) ProcessDocument(ctx context.Context, name string, doc *pdftext.Document) Result {
	docType := classify.Classify(doc.FullText())
	res := Result{File: name, DocType: docType, Pages: len(doc.Pages)}
	b.p.logger.Info("ingest.file.classified", "file", name, "doc_type", docType, "pages", len(doc.Pages))

	if docType == classify.Unknown {
		res.Errors = append(res.Errors, PageError{File: name, Page: 0, Reason: "tipo de documento no reconocido"})
		return res
	}

	for i, pageText := range doc.Pages {
		page := i + 1
		if strings.TrimSpace(pageText) == "" {
			res.Errors = append(res.Errors, PageError{File: name, Page: page, Reason: "página sin texto"})
			continue
		}
		stored, err := b.processPage(ctx, docType, pageText)
		if err != nil {
			b.p.logger.Warn("ingest.page.failed", "file", name, "page", page, "doc_type", docType, "error", err)
			res.Errors = append(res.Errors, PageError{File: name, Page: page, Reason: err.Error()})
			continue
		}
		b.p.logger.Info("ingest.page.ok", "file", name, "page", page, "doc_type", docType, "facts", stored)
		res.FactsStored += stored
	}
	return res
}

func (b *Batch) processPage(ctx context.Context, docType classify.DocType, pageText string) (int, error) {
	switch docType {
	case classify.Modelo190:
		return b.storeIncome(ctx, pageText, "modelo 190")
	case classify.Doc10T:
		return b.storeIncome(ctx, pageText, "10T")
	case classify.RNT:
		return b.storeContributions(ctx, pageText)
	case classify.IDC:
		// The statutory rates are seeded reference data; the extracted IDC
		// percentage is surfaced in the log for the advisor to compare.
		rec, err := b.p.extractor.ExtractIDC(ctx, pageText)
		if err != nil {
			return 0, err
		}
		b.p.logger.Info("ingest.idc.observed", "porcentaje_total", rec.TotalPercentage)
		return 0, nil
	case classify.Convenio:
		return b.storeAgreement(ctx, pageText)
	default:
		return 0, fmt.Errorf("unhandled document type %q", docType)
	}
}

func (b *Batch) storeIncome(ctx context.Context, pageText, docLabel string) (int, error) {
	rec, err := b.p.extractor.ExtractIncome(ctx, pageText, docLabel)
	if err != nil {
		return 0, err
	}
	fact := entity.IncomeFact{
		WorkerID:          rec.WorkerID,
		Year:              rec.Year,
		WorkerName:        rec.WorkerName,
		PercepcionIntegra: rec.PercepcionIntegra,
		CompanyID:         rec.CompanyID,
		CompanyName:       rec.CompanyName,
	}
	if err := b.p.incomes.Insert(ctx, fact); err != nil {
		return 0, fmt.Errorf("store income fact: %w", err)
	}
	b.lastSeenYear = rec.Year
	return 1, nil
}

func (b *Batch) storeContributions(ctx context.Context, pageText string) (int, error) {
	recs, err := b.p.extractor.ExtractRNT(ctx, pageText)
	if err != nil {
		return 0, err
	}
	stored := 0
	for _, rec := range recs {
		fact := entity.ContributionFact{
			WorkerID:      rec.WorkerID,
			Year:          rec.Year,
			Base:          rec.Base,
			DiasCotizados: rec.DiasCotizados,
			Periodo:       rec.Periodo,
			CompanyID:     rec.CompanyID,
			CompanyName:   rec.CompanyName,
		}
		if err := b.p.contributions.Insert(ctx, fact); err != nil {
			return stored, fmt.Errorf("store contribution fact: %w", err)
		}
		b.lastSeenYear = rec.Year
		stored++
	}
	return stored, nil
}

func (b *Batch) storeAgreement(ctx context.Context, pageText string) (int, error) {
	if b.agreementDone {
		b.p.logger.Info("ingest.convenio.skipped", "reason", "agreement already stored in this batch")
		return 0, nil
	}
	rec, err := b.p.extractor.ExtractConvenio(ctx, pageText)
	if err != nil {
		return 0, err
	}
	year := rec.Year
	if year == 0 {
		year = b.lastSeenYear
	}
	if year == 0 {
		return 0, fmt.Errorf("convenio sin año y ningún año previo en el lote")
	}
	fact := entity.AgreementFact{Year: year, Horas: decimal.NewFromInt(int64(rec.Horas))}
	if err := b.p.agreements.Insert(ctx, fact); err != nil {
		return 0, fmt.Errorf("store agreement fact: %w", err)
	}
	b.agreementDone = true
	return 1, nil
}

// Upload is one already-parsed document handed over by the HTTP surface.
type Upload struct {
	Name string
	Doc  *pdftext.Document
}

// ProcessUpload runs one batch over the documents of a single upload request.
func (p *Pipeline) ProcessUpload(ctx context.Context, uploads []Upload) []Result {
	batch := p.NewBatch()
	results := make([]Result, 0, len(uploads))
	for _, u := range uploads {
		results = append(results, batch.ProcessDocument(ctx, u.Name, u.Doc))
	}
	return results
}

// ProcessDir runs one batch over every PDF directly inside dir, in name order.
// Used by the batch CLI.
func (p *Pipeline) ProcessDir(ctx context.Context, dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	batch := p.NewBatch()
	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, batch.ProcessFile(ctx, path))
	}
	return results, nil
}
