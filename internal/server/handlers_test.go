package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nominalab/labor-costs/internal/chat"
	"github.com/nominalab/labor-costs/internal/common"
	"github.com/nominalab/labor-costs/internal/costs"
	"github.com/nominalab/labor-costs/internal/entity"
	"github.com/nominalab/labor-costs/internal/ingest"
)

type mockIngestor struct {
	uploads []ingest.Upload
	results []ingest.Result
}

func (m *mockIngestor) ProcessUpload(_ context.Context, uploads []ingest.Upload) []ingest.Result {
	m.uploads = uploads
	return m.results
}

type mockCosts struct {
	workerID string
	from, to int
	summary  *costs.Summary
	view     *entity.WorkersView
	err      error
}

func (m *mockCosts) Compute(_ context.Context, workerID string, fromYear, toYear int) (*costs.Summary, error) {
	m.workerID, m.from, m.to = workerID, fromYear, toYear
	return m.summary, m.err
}

func (m *mockCosts) WorkersView(context.Context) (*entity.WorkersView, error) {
	return m.view, m.err
}

type mockExporter struct {
	data []byte
	err  error
}

func (m *mockExporter) ExportCostsXLSX(context.Context, string, int, int) ([]byte, error) {
	return m.data, m.err
}

type mockAssistant struct {
	question string
	history  []chat.Message
	answer   string
	err      error
}

func (m *mockAssistant) Ask(_ context.Context, history []chat.Message, question string) (string, error) {
	m.history, m.question = history, question
	return m.answer, m.err
}

type mockResetter struct {
	called bool
	err    error
}

func (m *mockResetter) Reset(context.Context) error {
	m.called = true
	return m.err
}

type mockPinger struct{ err error }

func (m *mockPinger) PingContext(context.Context) error { return m.err }

type testDeps struct {
	ingestor  *mockIngestor
	costs     *mockCosts
	exporter  *mockExporter
	assistant *mockAssistant
	resetter  *mockResetter
	pinger    *mockPinger
}

func newTestServer() (*Server, *testDeps) {
	deps := &testDeps{
		ingestor:  &mockIngestor{},
		costs:     &mockCosts{summary: &costs.Summary{}, view: &entity.WorkersView{}},
		exporter:  &mockExporter{data: []byte("xlsx")},
		assistant: &mockAssistant{answer: "respuesta"},
		resetter:  &mockResetter{},
		pinger:    &mockPinger{},
	}
	cfg := common.ServerConfig{
		Addr:           ":0",
		AllowedOrigins: []string{"*"},
		MaxUploadBytes: 1 << 20,
	}
	s := NewServer(cfg, deps.ingestor, deps.costs, deps.exporter, deps.assistant, deps.resetter, deps.pinger, nil)
	return s, deps
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsDatabaseState(t *testing.T) {
	s, deps := newTestServer()

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	deps.pinger.err = errors.New("connection refused")
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestCostsParsesFilters(t *testing.T) {
	s, deps := newTestServer()

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/costs?worker=gafoj&from=2021&to=2022", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if deps.costs.workerID != "GAFOJ" || deps.costs.from != 2021 || deps.costs.to != 2022 {
		t.Errorf("filters = %q/%d/%d, want GAFOJ/2021/2022",
			deps.costs.workerID, deps.costs.from, deps.costs.to)
	}
}

func TestCostsRejectsBadYear(t *testing.T) {
	s, _ := newTestServer()
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/costs?from=hace-dos-años", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWorkersReturnsView(t *testing.T) {
	s, deps := newTestServer()
	deps.costs.view = &entity.WorkersView{
		Trabajadores: []entity.IncomeFact{{WorkerID: "GAFOJ", Year: 2022}},
	}

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/workers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var view entity.WorkersView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(view.Trabajadores) != 1 || view.Trabajadores[0].WorkerID != "GAFOJ" {
		t.Errorf("view = %+v", view)
	}
}

func TestCostsExportSetsAttachmentHeaders(t *testing.T) {
	s, _ := newTestServer()
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/costs/export", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Body.String() != "xlsx" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestChatHandlesQuestionAndTranscript(t *testing.T) {
	s, deps := newTestServer()
	body := `{"question": "¿Cuántos trabajadores hay?", "history": [{"role": "user", "content": "hola"}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if deps.assistant.question != "¿Cuántos trabajadores hay?" || len(deps.assistant.history) != 1 {
		t.Errorf("assistant got question %q, history %v", deps.assistant.question, deps.assistant.history)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["answer"] != "respuesta" {
		t.Errorf("answer = %q", resp["answer"])
	}
}

func TestChatRejectsBlankQuestion(t *testing.T) {
	s, _ := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"question": "  "}`))
	req.Header.Set("Content-Type", "application/json")
	if rec := doRequest(s, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestResetInvokesSchema(t *testing.T) {
	s, deps := newTestServer()
	rec := doRequest(s, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !deps.resetter.called {
		t.Error("schema reset not invoked")
	}
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	s, _ := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if rec := doRequest(s, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestIngestRejectsNonPDFPerFile(t *testing.T) {
	s, deps := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "notas.txt")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("no soy un pdf"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := doRequest(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if len(deps.ingestor.uploads) != 0 {
		t.Errorf("non-PDF reached the pipeline: %v", deps.ingestor.uploads)
	}
	var resp struct {
		Results []ingest.Result `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Results) != 1 || len(resp.Results[0].Errors) != 1 {
		t.Errorf("results = %+v, want one per-file error", resp.Results)
	}
}
