package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nominalab/labor-costs/internal/numfmt"
	"github.com/nominalab/labor-costs/internal/workerid"
)

// Extractor turns page text of a known document type into normalized records
// by prompting the completion service and decoding the JSON span in its reply.
type Extractor struct {
	completer Completer
	logger    *slog.Logger
}

func NewExtractor(completer Completer, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{completer: completer, logger: logger}
}

// ExtractIncome pulls a single worker income record from a modelo 190 or 10T
// page. When the model supplies no worker_id, the identifier is derived from
// the worker name.
func (e *Extractor) ExtractIncome(ctx context.Context, pageText, docLabel string) (IncomeRecord, error) {
	m, err := e.completeObject(ctx, buildIncomeSystemPrompt(docLabel), pageText, incomeSchema())
	if err != nil {
		return IncomeRecord{}, err
	}

	name := fieldString(m, "worker_name")
	if name == "" {
		return IncomeRecord{}, fmt.Errorf("%w: worker_name", ErrMissingField)
	}
	amount, err := fieldAmount(m, "percepcion_integra")
	if err != nil {
		return IncomeRecord{}, err
	}
	year, err := fieldInt(m, "year")
	if err != nil {
		return IncomeRecord{}, err
	}

	id := strings.ToUpper(strings.TrimSpace(fieldString(m, "worker_id")))
	if id == "" {
		id = workerid.DeriveID(name)
	}
	if id == "" {
		return IncomeRecord{}, fmt.Errorf("%w: worker_id", ErrMissingField)
	}

	rec := IncomeRecord{
		WorkerID:          id,
		WorkerName:        name,
		PercepcionIntegra: amount,
		Year:              year,
		CompanyID:         fieldString(m, "company_id"),
		CompanyName:       fieldString(m, "company_name"),
	}
	e.logger.Info("llm.extract.income.ok", "doc", docLabel, "worker_id", rec.WorkerID, "year", rec.Year)
	return rec, nil
}

// ExtractRNT pulls one contribution record per worker mentioned on an RNT
// page. Worker codes are stored verbatim (uppercased), never re-derived.
func (e *Extractor) ExtractRNT(ctx context.Context, pageText string) ([]ContributionRecord, error) {
	items, err := e.completeArray(ctx, buildRNTSystemPrompt(), pageText, rntSchema())
	if err != nil {
		return nil, err
	}

	records := make([]ContributionRecord, 0, len(items))
	for _, m := range items {
		id := strings.ToUpper(strings.TrimSpace(fieldString(m, "worker_id")))
		if id == "" {
			return nil, fmt.Errorf("%w: worker_id", ErrMissingField)
		}
		base, err := fieldAmount(m, "base_contingencias_comunes")
		if err != nil {
			return nil, err
		}
		if base.IsNegative() {
			return nil, fmt.Errorf("base_contingencias_comunes %s: negative", base)
		}
		days, err := fieldDays(m, "dias_cotizados")
		if err != nil {
			return nil, err
		}
		periodo, err := NormalizePeriodo(fieldString(m, "periodo"))
		if err != nil {
			return nil, err
		}
		year, err := fieldInt(m, "year")
		if err != nil {
			// The liquidation period carries the year when the model omits it.
			year, err = yearFromPeriodo(periodo)
			if err != nil {
				return nil, err
			}
		}
		records = append(records, ContributionRecord{
			WorkerID:      id,
			Base:          base,
			DiasCotizados: days,
			Periodo:       periodo,
			Year:          year,
			CompanyID:     fieldString(m, "company_id"),
			CompanyName:   fieldString(m, "company_name"),
		})
	}
	e.logger.Info("llm.extract.rnt.ok", "workers", len(records))
	return records, nil
}

// ExtractIDC pulls the total contribution percentage from an IDC report.
func (e *Extractor) ExtractIDC(ctx context.Context, pageText string) (IDCRecord, error) {
	m, err := e.completeObject(ctx, buildIDCSystemPrompt(), pageText, idcSchema())
	if err != nil {
		return IDCRecord{}, err
	}
	pct, err := fieldAmount(m, "porcentaje_total")
	if err != nil {
		return IDCRecord{}, err
	}
	e.logger.Info("llm.extract.idc.ok", "porcentaje_total", pct)
	return IDCRecord{TotalPercentage: pct}, nil
}

// ExtractConvenio pulls the annual agreement hours and the agreement's
// terminal validity year. Year is zero when the page exposes none.
func (e *Extractor) ExtractConvenio(ctx context.Context, pageText string) (ConvenioRecord, error) {
	m, err := e.completeObject(ctx, buildConvenioSystemPrompt(), pageText, convenioSchema())
	if err != nil {
		return ConvenioRecord{}, err
	}

	rec := ConvenioRecord{}
	if raw, ok := m["horas_convenio_anuales"]; ok && raw != nil {
		hours, err := hoursFromValue(raw)
		if err != nil {
			return ConvenioRecord{}, err
		}
		rec.Horas = hours
	}
	if year, err := fieldInt(m, "year"); err == nil {
		rec.Year = year
	}
	if rec.Horas == 0 {
		return ConvenioRecord{}, fmt.Errorf("%w: horas_convenio_anuales", ErrMissingField)
	}
	e.logger.Info("llm.extract.convenio.ok", "horas", rec.Horas, "year", rec.Year)
	return rec, nil
}

func (e *Extractor) completeObject(ctx context.Context, system, pageText string, schema map[string]any) (map[string]any, error) {
	raw, err := e.completeSpan(ctx, system, pageText, objectSpan, schema)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return m, nil
}

func (e *Extractor) completeArray(ctx context.Context, system, pageText string, schema map[string]any) ([]map[string]any, error) {
	raw, err := e.completeSpan(ctx, system, pageText, arraySpan, schema)
	if err != nil {
		return nil, err
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return items, nil
}

func (e *Extractor) completeSpan(ctx context.Context, system, pageText string, kind spanKind, schema map[string]any) ([]byte, error) {
	reply, err := e.completer.Complete(ctx, system, buildUserPrompt(pageText))
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	span, ok := FirstJSONSpan(reply, kind)
	if !ok {
		e.logger.Warn("llm.extract.no_json_span", "reply_bytes", len(reply))
		return nil, ErrNoJSON
	}
	if err := ValidateJSONAgainstSchema(schema, []byte(span)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return []byte(span), nil
}

// Wire-field coercion. The schemas accept strings and numbers for scalar
// fields; everything funnels through numfmt so European notation normalizes
// the same way regardless of how the model chose to quote it.

func fieldString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func fieldAmount(m map[string]any, key string) (decimal.Decimal, error) {
	switch v := m[key].(type) {
	case string:
		d, err := numfmt.ParseAmount(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s: %w", key, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
}

func fieldInt(m map[string]any, key string) (int, error) {
	switch v := m[key].(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s %q: %w", key, v, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
}

func fieldDays(m map[string]any, key string) (int, error) {
	switch v := m[key].(type) {
	case float64:
		n := int(v)
		if n < 0 {
			return 0, fmt.Errorf("%s: negative", key)
		}
		return n, nil
	case string:
		n, err := numfmt.ParseDays(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
}

func hoursFromValue(raw any) (int, error) {
	switch v := raw.(type) {
	case string:
		return numfmt.ParseHours(v)
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("horas_convenio_anuales: negative")
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: horas_convenio_anuales", ErrMissingField)
	}
}

var (
	rePeriodoNormal = regexp.MustCompile(`^01-\d{2}-\d{4}$`)
	rePeriodoSource = regexp.MustCompile(`(\d{1,2})/(\d{4})`)
)

// NormalizePeriodo rewrites a liquidation period to the first-of-month form
// "01-MM-YYYY". Source documents print ranges like "12/2021-12/2021"; the
// first month/year pair wins.
func NormalizePeriodo(s string) (string, error) {
	s = strings.TrimSpace(s)
	if rePeriodoNormal.MatchString(s) {
		return s, nil
	}
	match := rePeriodoSource.FindStringSubmatch(s)
	if match == nil {
		return "", fmt.Errorf("periodo %q: unrecognized format", s)
	}
	month := match[1]
	if len(month) == 1 {
		month = "0" + month
	}
	return "01-" + month + "-" + match[2], nil
}

func yearFromPeriodo(periodo string) (int, error) {
	if len(periodo) != len("01-MM-YYYY") {
		return 0, fmt.Errorf("periodo %q: no year", periodo)
	}
	return strconv.Atoi(periodo[len("01-MM-"):])
}
