package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/FACorreiaa/invoice-lens/internal/domain/dashboard"
	"github.com/FACorreiaa/invoice-lens/internal/domain/extraction"
	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 50 << 20

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")
	if status == "" {
		status = dashboard.StatusAll
	}

	all := s.tracker.List()
	respondJSON(w, http.StatusOK, map[string]any{
		"records": dashboard.Filter(all, search, status),
		"summary": dashboard.SummaryCounts(all),
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, found := s.tracker.Get(id)
	if !found {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var body struct {
		Values map[string]any `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(body.Values) == 0 {
		respondError(w, http.StatusBadRequest, "values must not be empty")
		return
	}
	if err := s.schema.ValidateValues(body.Values); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.tracker.Update(id, body.Values) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	rec, _ := s.tracker.Get(id)
	if err := s.searchIndex.Index(rec); err != nil {
		s.logger.Warn("failed to reindex record", slog.Any("error", err))
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if !s.tracker.Remove(id) {
		respondError(w, http.StatusNotFound, "record not found")
		return
	}
	if err := s.fileStorage.Delete(r.Context(), id); err != nil {
		s.logger.Warn("failed to delete stored document", slog.Any("error", err))
	}
	if err := s.searchIndex.Remove(id); err != nil {
		s.logger.Debug("failed to remove record from index", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rc, info, err := s.fileStorage.Open(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+info.Name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Warn("failed to stream document", slog.Any("error", err))
	}
}

// handleUpload accepts a multipart batch, enqueues one record per file and
// kicks off extraction in the background. It responds as soon as the batch is
// enqueued; clients poll record status.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files supplied")
		return
	}
	templateName := r.FormValue("template")

	var created []*record.Record
	var items []extraction.Item
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		rec := s.tracker.Enqueue(fh.Filename, "/api/records")
		if templateName != "" {
			s.tracker.SetTemplate(rec.ID, templateName)
			rec.ActiveTemplateName = templateName
		}

		contentType := fh.Header.Get("Content-Type")
		if _, err := s.fileStorage.Save(r.Context(), rec.ID, fh.Filename, contentType, bytes.NewReader(data)); err != nil {
			s.logger.Warn("failed to store uploaded document",
				slog.String("file", fh.Filename),
				slog.Any("error", err),
			)
		}
		if err := s.searchIndex.Index(rec); err != nil {
			s.logger.Debug("failed to index new record", slog.Any("error", err))
		}

		created = append(created, rec)
		items = append(items, extraction.Item{
			RecordID: rec.ID,
			Document: extraction.Document{
				FileName:    fh.Filename,
				ContentType: contentType,
				Data:        data,
			},
		})
	}

	// Detached from the request context: extraction outlives the response.
	go func() {
		s.pipeline.ProcessBatch(context.Background(), items)
		for _, rec := range created {
			if current, ok := s.tracker.Get(rec.ID); ok {
				if err := s.searchIndex.Index(current); err != nil {
					s.logger.Debug("failed to reindex record", slog.Any("error", err))
				}
			}
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]any{"records": created})
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, dashboard.SummaryCounts(s.tracker.List()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "q parameter is required")
		return
	}
	hits, err := s.searchIndex.Search(query, 25)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "search failed")
		return
	}
	var records []*record.Record
	for _, hit := range hits {
		if rec, ok := s.tracker.Get(hit.RecordID); ok {
			records = append(records, rec)
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid record id")
		return uuid.Nil, false
	}
	return id, true
}
