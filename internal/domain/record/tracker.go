package record

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transition describes one observed status change.
type Transition struct {
	Record *Record
	From   Status
	To     Status
}

// Observer is notified after every status transition. The tracker itself
// holds no notification logic; observers run synchronously and must be fast.
type Observer func(Transition)

// RemovalObserver is notified after a record is deleted, with a snapshot of
// its final state.
type RemovalObserver func(*Record)

// Tracker owns the record set. It is an explicit store object passed by
// reference to whoever needs it; there is no module-level singleton.
type Tracker struct {
	mu               sync.RWMutex
	records          map[uuid.UUID]*Record
	order            []uuid.UUID
	observers        []Observer
	removalObservers []RemovalObserver
	logger           *slog.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		records: make(map[uuid.UUID]*Record),
		logger:  logger,
	}
}

// Subscribe registers a transition observer. Not safe to call concurrently
// with transitions; register observers during wiring.
func (t *Tracker) Subscribe(obs Observer) {
	t.observers = append(t.observers, obs)
}

// SubscribeRemoval registers a removal observer. Same wiring-time contract as
// Subscribe.
func (t *Tracker) SubscribeRemoval(obs RemovalObserver) {
	t.removalObservers = append(t.removalObservers, obs)
}

// Enqueue creates a record for an upload intent. The record starts in
// uploading with empty extracted values.
func (t *Tracker) Enqueue(fileName string, sourceURL string) *Record {
	t.mu.Lock()
	now := time.Now()
	rec := &Record{
		ID:              uuid.New(),
		FileName:        fileName,
		Status:          StatusUploading,
		ExtractedValues: map[string]any{},
		SourceURL:       sourceURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	t.records[rec.ID] = rec
	t.order = append(t.order, rec.ID)
	t.mu.Unlock()

	t.notify(Transition{Record: rec.Clone(), From: StatusPending, To: StatusUploading})
	return rec.Clone()
}

// Advance transitions a record's status. When next is processed or
// needs_validation the payload populates the extracted values; when error the
// message records why. Unknown ids and backward transitions are silent no-ops
// because late results from the external pipeline may race user deletions.
func (t *Tracker) Advance(id uuid.UUID, next Status, payload map[string]any, errMsg string) {
	t.mu.Lock()
	rec, ok := t.records[id]
	if !ok {
		t.mu.Unlock()
		t.logger.Debug("advance on unknown record, dropping", slog.String("id", id.String()))
		return
	}
	if rec.Status.Terminal() || next.rank() < rec.Status.rank() {
		t.mu.Unlock()
		t.logger.Debug("ignoring backward transition",
			slog.String("id", id.String()),
			slog.String("from", string(rec.Status)),
			slog.String("to", string(next)),
		)
		return
	}

	from := rec.Status
	rec.Status = next
	rec.UpdatedAt = time.Now()
	switch next {
	case StatusProcessed, StatusNeedsValidation:
		rec.ExtractedValues = NormalizeValues(payload)
	case StatusError:
		rec.ErrorMessage = errMsg
	}
	snapshot := rec.Clone()
	t.mu.Unlock()

	t.notify(Transition{Record: snapshot, From: from, To: next})
}

// Update merges a user correction into the extracted values, key by key.
// Status is never touched: user edits on terminal records keep them terminal.
func (t *Tracker) Update(id uuid.UUID, values map[string]any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[id]
	if !ok {
		return false
	}
	if rec.ExtractedValues == nil {
		rec.ExtractedValues = map[string]any{}
	}
	for k, v := range NormalizeValues(values) {
		rec.ExtractedValues[k] = v
	}
	rec.UpdatedAt = time.Now()
	return true
}

// SetTemplate records the template name that guided this record's upload.
// The name is just a string; deleting the template later does not cascade.
func (t *Tracker) SetTemplate(id uuid.UUID, templateName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.records[id]; ok {
		rec.ActiveTemplateName = templateName
		rec.UpdatedAt = time.Now()
	}
}

// Remove deletes a record. Explicit user deletion is the only removal path.
// Observers see the final state, so in-flight deletions can release whatever
// they were counting against the record.
func (t *Tracker) Remove(id uuid.UUID) bool {
	t.mu.Lock()
	rec, ok := t.records[id]
	if !ok {
		t.mu.Unlock()
		return false
	}
	delete(t.records, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	snapshot := rec.Clone()
	t.mu.Unlock()

	for _, obs := range t.removalObservers {
		obs(snapshot)
	}
	return true
}

// Get returns a snapshot of one record.
func (t *Tracker) Get(id uuid.UUID) (*Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// List returns record snapshots in insertion order.
func (t *Tracker) List() []*Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Record, 0, len(t.order))
	for _, id := range t.order {
		if rec, ok := t.records[id]; ok {
			out = append(out, rec.Clone())
		}
	}
	return out
}

// Len returns the number of tracked records.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// SweepStuck marks records stuck in processing longer than threshold as
// errored. Called by the background scheduler.
func (t *Tracker) SweepStuck(threshold time.Duration) int {
	t.mu.RLock()
	var stuck []uuid.UUID
	cutoff := time.Now().Add(-threshold)
	for _, rec := range t.records {
		if rec.Status == StatusProcessing && rec.UpdatedAt.Before(cutoff) {
			stuck = append(stuck, rec.ID)
		}
	}
	t.mu.RUnlock()

	for _, id := range stuck {
		t.Advance(id, StatusError, nil, "extraction timed out")
	}
	return len(stuck)
}

func (t *Tracker) notify(tr Transition) {
	for _, obs := range t.observers {
		obs(tr)
	}
}
