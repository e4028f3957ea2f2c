package server

import (
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/invoice-lens/internal/domain/dashboard"
	"github.com/FACorreiaa/invoice-lens/internal/domain/export"
	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// filteredForExport applies the same search/status filters as the table so
// the download matches what the user sees.
func (s *Server) filteredForExport(r *http.Request) []*record.Record {
	search := r.URL.Query().Get("search")
	status := r.URL.Query().Get("status")
	if status == "" {
		status = dashboard.StatusAll
	}
	return dashboard.Filter(s.tracker.List(), search, status)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	csv := export.ToDelimitedText(s.filteredForExport(r), s.schema)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	_, _ = w.Write([]byte(csv))
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	if err := export.WriteWorkbook(w, s.filteredForExport(r), s.schema); err != nil {
		s.logger.Error("failed to write workbook", slog.Any("error", err))
	}
}

func (s *Server) handleReimport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := export.ReadCorrections(file, s.tracker, s.schema)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not parse CSV: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}
