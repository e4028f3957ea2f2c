// Package notify emails the user when uploaded documents reach a terminal
// state. It observes tracker transitions; the tracker itself stays free of
// notification logic.
package notify

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/resend/resend-go/v2"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// Notifier sends terminal-status emails through Resend. With no API key the
// notifier is inert and only logs, so local development needs no credentials.
type Notifier struct {
	client *resend.Client
	from   string
	to     string
	logger *slog.Logger

	mu      sync.Mutex
	pending int
}

// New creates a notifier. apiKey may be empty.
func New(apiKey, from, to string, logger *slog.Logger) *Notifier {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &Notifier{
		client: client,
		from:   from,
		to:     to,
		logger: logger,
	}
}

// Observe is the tracker observer hook. It counts in-flight records and sends
// a summary email when a batch drains to zero.
func (n *Notifier) Observe(tr record.Transition) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case tr.To == record.StatusUploading || tr.To == record.StatusProcessing:
		if tr.From == record.StatusPending {
			n.pending++
		}
	case tr.To.Terminal():
		if n.pending > 0 {
			n.pending--
		}
		if n.pending == 0 {
			go n.sendTerminal(tr.Record)
		}
	}
}

// ObserveRemoval is the tracker removal hook. A record deleted before it
// reaches a terminal status must still drain the batch count, otherwise the
// count never hits zero again. No email fires for a deletion.
func (n *Notifier) ObserveRemoval(rec *record.Record) {
	if rec.Status.Terminal() {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pending > 0 {
		n.pending--
	}
}

func (n *Notifier) sendTerminal(rec *record.Record) {
	subject := fmt.Sprintf("Invoice batch finished: %s is %s", rec.FileName, rec.Status)
	if n.client == nil || n.from == "" || n.to == "" {
		n.logger.Debug("email notifications disabled", slog.String("subject", subject))
		return
	}

	body := fmt.Sprintf("<p>Processing finished. Last document: <strong>%s</strong> (%s).</p>", rec.FileName, rec.Status)
	if rec.ErrorMessage != "" {
		body += fmt.Sprintf("<p>Error: %s</p>", rec.ErrorMessage)
	}

	_, err := n.client.Emails.Send(&resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: subject,
		Html:    body,
	})
	if err != nil {
		n.logger.Error("failed to send notification email",
			slog.String("file", rec.FileName),
			slog.Any("error", err),
		)
		return
	}
	n.logger.Info("notification email sent", slog.String("file", rec.FileName))
}
