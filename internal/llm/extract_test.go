package llm

import (
	"context"
	"errors"
	"testing"
)

// fakeCompleter returns canned replies in order, recording the prompts.
type fakeCompleter struct {
	replies []string
	calls   int
	systems []string
}

func (f *fakeCompleter) Complete(_ context.Context, system, _ string) (string, error) {
	f.systems = append(f.systems, system)
	if f.calls >= len(f.replies) {
		return "", errors.New("no more canned replies")
	}
	reply := f.replies[f.calls]
	f.calls++
	return reply, nil
}

func TestExtractIncomeDerivesWorkerID(t *testing.T) {
	fc := &fakeCompleter{replies: []string{
		`Datos extraídos: {"worker_name": "Ana Lopez Ruiz", "percepcion_integra": "24.214,44", "year": 2021, "company_id": "B1234", "company_name": "Acme SL"}`,
	}}
	ex := NewExtractor(fc, nil)

	rec, err := ex.ExtractIncome(context.Background(), "texto", "modelo 190")
	if err != nil {
		t.Fatal(err)
	}
	if rec.WorkerID != "LORUA" {
		t.Errorf("WorkerID = %q, want LORUA", rec.WorkerID)
	}
	if rec.PercepcionIntegra.String() != "24214.44" {
		t.Errorf("PercepcionIntegra = %s, want 24214.44", rec.PercepcionIntegra)
	}
	if rec.Year != 2021 || rec.CompanyID != "B1234" || rec.CompanyName != "Acme SL" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestExtractIncomeKeepsModelSuppliedID(t *testing.T) {
	fc := &fakeCompleter{replies: []string{
		`{"worker_id": "gafoj", "worker_name": "Jose Garcia Fontecha", "percepcion_integra": 30000.5, "year": "2022"}`,
	}}
	ex := NewExtractor(fc, nil)

	rec, err := ex.ExtractIncome(context.Background(), "texto", "10t")
	if err != nil {
		t.Fatal(err)
	}
	if rec.WorkerID != "GAFOJ" {
		t.Errorf("WorkerID = %q, want GAFOJ", rec.WorkerID)
	}
	if rec.Year != 2022 {
		t.Errorf("Year = %d, want 2022", rec.Year)
	}
}

func TestExtractIncomeNoJSON(t *testing.T) {
	fc := &fakeCompleter{replies: []string{"lo siento, no encuentro datos en la página"}}
	ex := NewExtractor(fc, nil)

	_, err := ex.ExtractIncome(context.Background(), "texto", "modelo 190")
	if !errors.Is(err, ErrNoJSON) {
		t.Errorf("err = %v, want ErrNoJSON", err)
	}
}

func TestExtractRNT(t *testing.T) {
	fc := &fakeCompleter{replies: []string{
		`[
			{"worker_id": "LORUA", "base_contingencias_comunes": "3.000,00", "dias_cotizados": 30, "periodo": "12/2021-12/2021", "company_id": "B1234", "company_name": "Acme SL"},
			{"worker_id": "GAFOJ", "base_contingencias_comunes": 2500.1234, "dias_cotizados": "31", "periodo": "01-11-2021", "year": 2021}
		]`,
	}}
	ex := NewExtractor(fc, nil)

	recs, err := ex.ExtractRNT(context.Background(), "texto")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	first := recs[0]
	if first.WorkerID != "LORUA" || first.Periodo != "01-12-2021" || first.Year != 2021 {
		t.Errorf("first record: %+v", first)
	}
	if first.Base.String() != "3000" && first.Base.String() != "3000.00" {
		t.Errorf("Base = %s, want 3000.00", first.Base)
	}
	if recs[1].DiasCotizados != 31 || recs[1].Periodo != "01-11-2021" {
		t.Errorf("second record: %+v", recs[1])
	}
}

func TestExtractRNTRejectsBadDays(t *testing.T) {
	fc := &fakeCompleter{replies: []string{
		`[{"worker_id": "LORUA", "base_contingencias_comunes": "3.000,00", "dias_cotizados": "030", "periodo": "12/2021-12/2021"}]`,
	}}
	ex := NewExtractor(fc, nil)
	if _, err := ex.ExtractRNT(context.Background(), "texto"); err == nil {
		t.Error("expected error for leading-zero day count")
	}
}

func TestExtractIDC(t *testing.T) {
	fc := &fakeCompleter{replies: []string{`{"porcentaje_total": "31,40"}`}}
	ex := NewExtractor(fc, nil)

	rec, err := ex.ExtractIDC(context.Background(), "texto")
	if err != nil {
		t.Fatal(err)
	}
	if rec.TotalPercentage.String() != "31.4" && rec.TotalPercentage.String() != "31.40" {
		t.Errorf("TotalPercentage = %s, want 31.40", rec.TotalPercentage)
	}
}

func TestExtractConvenio(t *testing.T) {
	fc := &fakeCompleter{replies: []string{`{"horas_convenio_anuales": "1.708 h", "year": 2023}`}}
	ex := NewExtractor(fc, nil)

	rec, err := ex.ExtractConvenio(context.Background(), "texto")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Horas != 1708 || rec.Year != 2023 {
		t.Errorf("record = %+v, want 1708 hours in 2023", rec)
	}
}

func TestExtractConvenioWithoutYear(t *testing.T) {
	fc := &fakeCompleter{replies: []string{`{"horas_convenio_anuales": 1760}`}}
	ex := NewExtractor(fc, nil)

	rec, err := ex.ExtractConvenio(context.Background(), "texto")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Horas != 1760 || rec.Year != 0 {
		t.Errorf("record = %+v, want 1760 hours and no year", rec)
	}
}

func TestExtractConvenioWithoutHours(t *testing.T) {
	fc := &fakeCompleter{replies: []string{`{"year": 2023}`}}
	ex := NewExtractor(fc, nil)
	if _, err := ex.ExtractConvenio(context.Background(), "texto"); !errors.Is(err, ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
}
