// Package server exposes the dashboard core over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/FACorreiaa/invoice-lens/internal/domain/dashboard"
	"github.com/FACorreiaa/invoice-lens/internal/domain/extraction"
	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
	"github.com/FACorreiaa/invoice-lens/internal/domain/template"
	"github.com/FACorreiaa/invoice-lens/pkg/config"
	"github.com/FACorreiaa/invoice-lens/pkg/storage"
)

// Server is the HTTP surface over the dashboard core.
type Server struct {
	httpServer  *http.Server
	cfg         config.ServerConfig
	logger      *slog.Logger
	tracker     *record.Tracker
	templates   *template.Store
	pipeline    *extraction.Pipeline
	fileStorage storage.Storage
	searchIndex *dashboard.SearchIndex
	schema      schema.Schema
}

// New creates a server over the given collaborators.
func New(
	cfg config.ServerConfig,
	tracker *record.Tracker,
	templates *template.Store,
	pipeline *extraction.Pipeline,
	fileStorage storage.Storage,
	searchIndex *dashboard.SearchIndex,
	logger *slog.Logger,
) *Server {
	s := &Server{
		cfg:         cfg,
		logger:      logger,
		tracker:     tracker,
		templates:   templates,
		pipeline:    pipeline,
		fileStorage: fileStorage,
		searchIndex: searchIndex,
		schema:      schema.Default(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})

	handler := s.logRequests(corsHandler.Handler(s.rateLimit(mux)))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("GET /api/records/{id}", s.handleGetRecord)
	mux.HandleFunc("PATCH /api/records/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/records/{id}", s.handleDeleteRecord)
	mux.HandleFunc("GET /api/records/{id}/document", s.handleGetDocument)
	mux.HandleFunc("POST /api/uploads", s.handleUpload)

	mux.HandleFunc("GET /api/templates", s.handleListTemplates)
	mux.HandleFunc("POST /api/templates", s.handleAddTemplate)
	mux.HandleFunc("PUT /api/templates/{id}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", s.handleDeleteTemplate)

	mux.HandleFunc("GET /api/dashboard/summary", s.handleSummary)
	mux.HandleFunc("GET /api/search", s.handleSearch)

	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/xlsx", s.handleExportExcel)
	mux.HandleFunc("POST /api/export/reimport", s.handleReimport)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Handler exposes the fully wrapped handler stack for in-process use.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
