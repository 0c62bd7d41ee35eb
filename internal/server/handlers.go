package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/nominalab/labor-costs/internal/chat"
	"github.com/nominalab/labor-costs/internal/classify"
	"github.com/nominalab/labor-costs/internal/ingest"
	"github.com/nominalab/labor-costs/internal/pdftext"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health.db_unreachable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "labor-costs"})
}

// handleIngest accepts a multipart upload of PDFs under the "files" field and
// runs them through one pipeline batch. Unreadable files become per-file error
// entries in the response; the endpoint itself only fails on a bad request.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded under field \"files\"")
		return
	}

	start := time.Now()
	uploads := make([]ingest.Upload, 0, len(files))
	var failed []ingest.Result
	for _, fh := range files {
		name := fh.Filename
		if !strings.EqualFold(ext(name), ".pdf") {
			failed = append(failed, unreadable(name, "only PDF files are accepted"))
			continue
		}
		doc, err := parsePart(fh)
		if err != nil {
			s.logger.Warn("ingest.upload.unreadable", "file", name, "error", err)
			failed = append(failed, unreadable(name, err.Error()))
			continue
		}
		uploads = append(uploads, ingest.Upload{Name: name, Doc: doc})
	}

	results := s.ingestor.ProcessUpload(r.Context(), uploads)
	results = append(results, failed...)

	s.logger.Info("ingest.upload.done",
		"files", len(files),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleWorkers(w http.ResponseWriter, r *http.Request) {
	view, err := s.costs.WorkersView(r.Context())
	if err != nil {
		s.logger.Error("workers.view_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to assemble workers view")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCosts(w http.ResponseWriter, r *http.Request) {
	workerID, from, to, ok := costParams(w, r)
	if !ok {
		return
	}
	summary, err := s.costs.Compute(r.Context(), workerID, from, to)
	if err != nil {
		s.logger.Error("costs.compute_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute costs")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCostsExport(w http.ResponseWriter, r *http.Request) {
	workerID, from, to, ok := costParams(w, r)
	if !ok {
		return
	}
	data, err := s.exporter.ExportCostsXLSX(r.Context(), workerID, from, to)
	if err != nil {
		s.logger.Error("costs.export_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export costs")
		return
	}
	filename := fmt.Sprintf("costes-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type chatRequest struct {
	Question string         `json:"question"`
	History  []chat.Message `json:"history,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	answer, err := s.assistant.Ask(r.Context(), req.History, req.Question)
	if err != nil {
		s.logger.Error("chat.failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to answer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.schema.Reset(r.Context()); err != nil {
		s.logger.Error("admin.reset_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func costParams(w http.ResponseWriter, r *http.Request) (workerID string, from, to int, ok bool) {
	workerID = strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("worker")))
	from, okFrom := yearParam(r, "from")
	to, okTo := yearParam(r, "to")
	if !okFrom || !okTo {
		writeError(w, http.StatusBadRequest, "from/to must be non-negative years")
		return "", 0, 0, false
	}
	return workerID, from, to, true
}

func parsePart(fh *multipart.FileHeader) (*pdftext.Document, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return pdftext.ExtractReader(bytes.NewReader(data), int64(len(data)))
}

func unreadable(name, reason string) ingest.Result {
	return ingest.Result{
		File:    name,
		DocType: classify.Unknown,
		Errors:  []ingest.PageError{{File: name, Page: 0, Reason: reason}},
	}
}

func ext(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
