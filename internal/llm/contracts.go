package llm

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Completer is the single seam to the external text-completion service. The
// reply may wrap the expected JSON in prose; the extractor locates the first
// balanced JSON span rather than assuming a pure-JSON reply.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extraction errors surfaced per page. The ingestion pipeline catches them so
// one malformed page never aborts the rest of the batch.
var (
	ErrNoJSON       = errors.New("reply contains no JSON span of the expected shape")
	ErrMissingField = errors.New("record is missing a required field")
)

// IncomeRecord is the normalized shape extracted from a modelo 190 or 10T
// page: one worker's gross annual income for a fiscal year.
type IncomeRecord struct {
	WorkerID          string
	WorkerName        string
	PercepcionIntegra decimal.Decimal
	Year              int
	CompanyID         string
	CompanyName       string
}

// ContributionRecord is one worker's entry from an RNT page. WorkerID is the
// 5-letter code printed verbatim on the document, never re-derived.
type ContributionRecord struct {
	WorkerID      string
	Base          decimal.Decimal
	DiasCotizados int
	Periodo       string // "01-MM-YYYY"
	Year          int
	CompanyID     string
	CompanyName   string
}

// IDCRecord carries the total contribution percentage from an IDC report.
type IDCRecord struct {
	TotalPercentage decimal.Decimal
}

// ConvenioRecord carries the annual agreement hours and the agreement's
// terminal validity year. Year is zero when the page did not expose one; the
// pipeline then falls back to the year remembered for the current batch.
type ConvenioRecord struct {
	Horas int
	Year  int
}
