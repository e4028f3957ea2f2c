package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/invoice-lens/internal/domain/dashboard"
	"github.com/FACorreiaa/invoice-lens/internal/domain/extraction"
	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/template"
	"github.com/FACorreiaa/invoice-lens/internal/server"
	"github.com/FACorreiaa/invoice-lens/pkg/config"
	"github.com/FACorreiaa/invoice-lens/pkg/cron"
	"github.com/FACorreiaa/invoice-lens/pkg/metrics"
	"github.com/FACorreiaa/invoice-lens/pkg/notify"
	"github.com/FACorreiaa/invoice-lens/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Tracker     *record.Tracker
	Templates   *template.Store
	SearchIndex *dashboard.SearchIndex
	FileStorage storage.Storage
	Extractor   extraction.Extractor
	Pipeline    *extraction.Pipeline
	Metrics     *metrics.Metrics
	Notifier    *notify.Notifier
	Scheduler   *cron.Scheduler
	Server      *server.Server
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.Tracker = record.NewTracker(logger)
	deps.Templates = template.NewStore()

	searchIndex, err := dashboard.NewSearchIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to init search index: %w", err)
	}
	deps.SearchIndex = searchIndex

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init file storage: %w", err)
	}
	deps.FileStorage = fileStorage

	if err := deps.initExtractor(ctx); err != nil {
		return nil, fmt.Errorf("failed to init extractor: %w", err)
	}
	deps.Pipeline = extraction.NewPipeline(
		deps.Tracker,
		deps.Extractor,
		cfg.Extraction.Concurrency,
		cfg.Extraction.Timeout,
		logger,
	)

	deps.Metrics = metrics.New()
	deps.Tracker.Subscribe(deps.Metrics.Observe)

	deps.Notifier = notify.New(cfg.Notify.ResendAPIKey, cfg.Notify.FromAddress, cfg.Notify.ToAddress, logger)
	deps.Tracker.Subscribe(deps.Notifier.Observe)
	deps.Tracker.SubscribeRemoval(deps.Notifier.ObserveRemoval)

	deps.Scheduler = cron.NewScheduler(deps.Tracker, cfg.Extraction.StuckThreshold, logger)

	deps.Server = server.New(
		cfg.Server,
		deps.Tracker,
		deps.Templates,
		deps.Pipeline,
		deps.FileStorage,
		deps.SearchIndex,
		logger,
	)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initExtractor picks the Gemini collaborator when an API key is configured
// and the simulated one otherwise.
func (d *Dependencies) initExtractor(ctx context.Context) error {
	if d.Config.Extraction.APIKey == "" {
		d.Logger.Info("no extraction API key, using simulated extractor")
		d.Extractor = extraction.NewSimulatedExtractor(d.Config.Extraction.SimulatedSeed)
		return nil
	}

	gemini, err := extraction.NewGeminiExtractor(ctx, d.Config.Extraction.APIKey, d.Config.Extraction.Model)
	if err != nil {
		return err
	}
	d.Extractor = gemini
	d.Logger.Info("using Gemini extractor", slog.String("model", d.Config.Extraction.Model))
	return nil
}
