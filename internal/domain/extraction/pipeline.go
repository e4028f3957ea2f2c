package extraction

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// Item pairs a tracked record with its uploaded document bytes.
type Item struct {
	RecordID uuid.UUID
	Document Document
}

// Pipeline dispatches extraction calls for a batch of uploads and advances
// each record to a terminal status. Calls across files run concurrently; no
// two concurrent calls ever target the same record id.
type Pipeline struct {
	tracker     *record.Tracker
	extractor   Extractor
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewPipeline creates a pipeline over the tracker and extraction collaborator.
func NewPipeline(tracker *record.Tracker, extractor Extractor, concurrency int, timeout time.Duration, logger *slog.Logger) *Pipeline {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pipeline{
		tracker:     tracker,
		extractor:   extractor,
		concurrency: concurrency,
		timeout:     timeout,
		logger:      logger,
	}
}

// ProcessBatch runs extraction for every item, bounded by the configured
// concurrency, and blocks until the batch settles. Failures never abort the
// batch: each record independently reaches processed, needs_validation or
// error. A record deleted mid-flight makes its late result a no-op.
func (p *Pipeline) ProcessBatch(ctx context.Context, items []Item) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, item := range items {
		g.Go(func() error {
			p.processOne(ctx, item)
			return nil
		})
	}
	// Workers never return errors; they record outcomes on the tracker.
	_ = g.Wait()
}

func (p *Pipeline) processOne(ctx context.Context, item Item) {
	tracer := otel.Tracer("invoice-lens/extraction")
	ctx, span := tracer.Start(ctx, "extraction.processOne")
	span.SetAttributes(
		attribute.String("record.id", item.RecordID.String()),
		attribute.String("file.name", item.Document.FileName),
	)
	defer span.End()

	p.tracker.Advance(item.RecordID, record.StatusProcessing, nil, "")

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	payload, err := p.extractor.Extract(ctx, item.Document)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		p.logger.Warn("extraction failed",
			slog.String("file", item.Document.FileName),
			slog.Any("error", err),
		)
		p.tracker.Advance(item.RecordID, record.StatusError, nil, err.Error())
		return
	}

	next := record.StatusProcessed
	if !payload.Complete() {
		next = record.StatusNeedsValidation
	}
	p.tracker.Advance(item.RecordID, next, payload.Values(), "")
}
