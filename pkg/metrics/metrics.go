// Package metrics exposes Prometheus counters for the extraction pipeline
// and serves them on a dedicated listener.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	recordsEnqueued    prometheus.Counter
	recordsByOutcome   *prometheus.CounterVec
	extractionDuration prometheus.Histogram
}

// New registers the instruments on the default registry.
func New() *Metrics {
	return &Metrics{
		recordsEnqueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "invoice_records_enqueued_total",
			Help: "Number of documents enqueued for extraction.",
		}),
		recordsByOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "invoice_records_terminal_total",
			Help: "Number of records reaching a terminal status, by status.",
		}, []string{"status"}),
		extractionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoice_extraction_duration_seconds",
			Help:    "Wall time from enqueue to terminal status.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Observe is the tracker observer hook recording lifecycle outcomes.
func (m *Metrics) Observe(tr record.Transition) {
	switch {
	case tr.From == record.StatusPending:
		m.recordsEnqueued.Inc()
	case tr.To.Terminal():
		m.recordsByOutcome.WithLabelValues(string(tr.To)).Inc()
		m.extractionDuration.Observe(time.Since(tr.Record.CreatedAt).Seconds())
	}
}

// Serve starts the /metrics listener. It blocks, so run it in a goroutine.
func Serve(port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics listener starting", slog.String("addr", addr))
	return http.ListenAndServe(addr, mux)
}
