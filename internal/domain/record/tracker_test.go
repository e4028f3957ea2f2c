package record

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker() *Tracker {
	return NewTracker(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTracker_Enqueue(t *testing.T) {
	tracker := newTestTracker()

	var seen []Transition
	tracker.Subscribe(func(tr Transition) { seen = append(seen, tr) })

	rec := tracker.Enqueue("invoice-001.pdf", "file:///tmp/invoice-001.pdf")
	require.NotNil(t, rec)
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, StatusUploading, rec.Status)
	assert.NotNil(t, rec.ExtractedValues)
	assert.Empty(t, rec.ExtractedValues)

	require.Len(t, seen, 1)
	assert.Equal(t, StatusPending, seen[0].From)
	assert.Equal(t, StatusUploading, seen[0].To)
}

func TestTracker_Advance(t *testing.T) {
	t.Run("forward through the lifecycle", func(t *testing.T) {
		tracker := newTestTracker()
		rec := tracker.Enqueue("a.pdf", "")

		tracker.Advance(rec.ID, StatusProcessing, nil, "")
		got, ok := tracker.Get(rec.ID)
		require.True(t, ok)
		assert.Equal(t, StatusProcessing, got.Status)

		payload := map[string]any{
			"supplier":   "Acme Ltd",
			"totalPrice": 42.5,
		}
		tracker.Advance(rec.ID, StatusProcessed, payload, "")
		got, ok = tracker.Get(rec.ID)
		require.True(t, ok)
		assert.Equal(t, StatusProcessed, got.Status)
		assert.Equal(t, "Acme Ltd", got.ExtractedValues["supplier"])
		assert.Equal(t, 42.5, got.ExtractedValues["totalPrice"])
	})

	t.Run("error records the message", func(t *testing.T) {
		tracker := newTestTracker()
		rec := tracker.Enqueue("a.pdf", "")
		tracker.Advance(rec.ID, StatusProcessing, nil, "")
		tracker.Advance(rec.ID, StatusError, nil, "model returned no candidates")

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, StatusError, got.Status)
		assert.Equal(t, "model returned no candidates", got.ErrorMessage)
	})

	t.Run("unknown id is a silent no-op", func(t *testing.T) {
		tracker := newTestTracker()
		assert.NotPanics(t, func() {
			tracker.Advance(uuid.New(), StatusProcessed, nil, "")
		})
		assert.Equal(t, 0, tracker.Len())
	})

	t.Run("late advance after delete is a no-op", func(t *testing.T) {
		tracker := newTestTracker()
		rec := tracker.Enqueue("a.pdf", "")
		tracker.Advance(rec.ID, StatusProcessing, nil, "")
		require.True(t, tracker.Remove(rec.ID))

		// The extraction pipeline finishes after the user deleted the row.
		tracker.Advance(rec.ID, StatusProcessed, map[string]any{"supplier": "Ghost"}, "")

		assert.Equal(t, 0, tracker.Len())
		_, ok := tracker.Get(rec.ID)
		assert.False(t, ok, "record must not reappear")
	})

	t.Run("backward transitions are dropped", func(t *testing.T) {
		tracker := newTestTracker()
		rec := tracker.Enqueue("a.pdf", "")
		tracker.Advance(rec.ID, StatusProcessing, nil, "")
		tracker.Advance(rec.ID, StatusProcessed, map[string]any{"supplier": "Acme Ltd"}, "")

		tracker.Advance(rec.ID, StatusProcessing, nil, "")
		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, StatusProcessed, got.Status)
		assert.Equal(t, "Acme Ltd", got.ExtractedValues["supplier"])
	})

	t.Run("terminal statuses never change again", func(t *testing.T) {
		tracker := newTestTracker()
		rec := tracker.Enqueue("a.pdf", "")
		tracker.Advance(rec.ID, StatusError, nil, "boom")
		tracker.Advance(rec.ID, StatusProcessed, map[string]any{"supplier": "Acme Ltd"}, "")

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, StatusError, got.Status)
	})
}

func TestTracker_Update(t *testing.T) {
	t.Run("merges values without touching status", func(t *testing.T) {
		tracker := newTestTracker()
		rec := tracker.Enqueue("a.pdf", "")
		tracker.Advance(rec.ID, StatusProcessed, map[string]any{
			"supplier":   "Acme Ltd",
			"totalPrice": 42.5,
		}, "")

		require.True(t, tracker.Update(rec.ID, map[string]any{"supplier": "Acme GmbH"}))

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, StatusProcessed, got.Status, "user edits keep the record terminal")
		assert.Equal(t, "Acme GmbH", got.ExtractedValues["supplier"])
		assert.Equal(t, 42.5, got.ExtractedValues["totalPrice"], "untouched keys survive the merge")
	})

	t.Run("unknown id", func(t *testing.T) {
		tracker := newTestTracker()
		assert.False(t, tracker.Update(uuid.New(), map[string]any{"supplier": "x"}))
	})
}

func TestTracker_List(t *testing.T) {
	tracker := newTestTracker()
	a := tracker.Enqueue("a.pdf", "")
	b := tracker.Enqueue("b.pdf", "")
	c := tracker.Enqueue("c.pdf", "")

	list := tracker.List()
	require.Len(t, list, 3)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID, c.ID}, []uuid.UUID{list[0].ID, list[1].ID, list[2].ID})

	require.True(t, tracker.Remove(b.ID))
	list = tracker.List()
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, c.ID, list[1].ID)
}

func TestTracker_RemovalObserver(t *testing.T) {
	tracker := newTestTracker()

	var removed []*Record
	tracker.SubscribeRemoval(func(rec *Record) { removed = append(removed, rec) })

	rec := tracker.Enqueue("a.pdf", "")
	tracker.Advance(rec.ID, StatusProcessing, nil, "")
	require.True(t, tracker.Remove(rec.ID))

	require.Len(t, removed, 1)
	assert.Equal(t, rec.ID, removed[0].ID)
	assert.Equal(t, StatusProcessing, removed[0].Status, "observer sees the final state")

	assert.False(t, tracker.Remove(rec.ID))
	assert.Len(t, removed, 1, "a miss must not notify")
}

func TestTracker_SnapshotsAreIsolated(t *testing.T) {
	tracker := newTestTracker()
	rec := tracker.Enqueue("a.pdf", "")
	tracker.Advance(rec.ID, StatusProcessed, map[string]any{"supplier": "Acme Ltd"}, "")

	snap, _ := tracker.Get(rec.ID)
	snap.ExtractedValues["supplier"] = "Tampered"

	fresh, _ := tracker.Get(rec.ID)
	assert.Equal(t, "Acme Ltd", fresh.ExtractedValues["supplier"])
}

func TestTracker_SweepStuck(t *testing.T) {
	tracker := newTestTracker()
	rec := tracker.Enqueue("a.pdf", "")
	tracker.Advance(rec.ID, StatusProcessing, nil, "")

	assert.Equal(t, 0, tracker.SweepStuck(time.Hour), "fresh records are left alone")

	swept := tracker.SweepStuck(-time.Millisecond)
	assert.Equal(t, 1, swept)
	got, _ := tracker.Get(rec.ID)
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "extraction timed out", got.ErrorMessage)
}
