package editor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedRecord(t *testing.T, tracker *record.Tracker) *record.Record {
	t.Helper()
	rec := tracker.Enqueue("invoice-001.pdf", "")
	tracker.Advance(rec.ID, record.StatusProcessed, map[string]any{
		"supplier":   "Acme Ltd",
		"date":       "2026-01-15",
		"totalPrice": 42.5,
		"products": []record.Product{
			{"name": "Widget", "quantity": 2.0, "price": 10.0},
		},
	}, "")
	got, ok := tracker.Get(rec.ID)
	require.True(t, ok)
	return got
}

func TestEditor_BeginEdit(t *testing.T) {
	tracker := record.NewTracker(testLogger())
	rec := seedRecord(t, tracker)
	e := New(tracker, schema.Default(), nil, testLogger())

	t.Run("non-editable field is refused", func(t *testing.T) {
		assert.False(t, e.BeginEdit(rec.ID, "fileName"))
		_, _, editing := e.Editing()
		assert.False(t, editing)
	})

	t.Run("unknown field is refused", func(t *testing.T) {
		assert.False(t, e.BeginEdit(rec.ID, "nope"))
	})

	t.Run("unknown record is refused", func(t *testing.T) {
		assert.False(t, e.BeginEdit(uuid.New(), "supplier"))
	})

	t.Run("buffer seeds from the current value", func(t *testing.T) {
		require.True(t, e.BeginEdit(rec.ID, "supplier"))
		buf, ok := e.Buffer()
		require.True(t, ok)
		assert.Equal(t, "Acme Ltd", buf)
		e.CancelEdit()
	})

	t.Run("number buffer seeds without trailing zeros", func(t *testing.T) {
		require.True(t, e.BeginEdit(rec.ID, "totalPrice"))
		buf, _ := e.Buffer()
		assert.Equal(t, "42.5", buf)
		e.CancelEdit()
	})

	t.Run("product buffer seeds as JSON", func(t *testing.T) {
		require.True(t, e.BeginEdit(rec.ID, "products"))
		buf, _ := e.Buffer()
		assert.Contains(t, buf, `"name":"Widget"`)
		e.CancelEdit()
	})

	t.Run("missing value seeds an empty buffer", func(t *testing.T) {
		bare := tracker.Enqueue("empty.pdf", "")
		tracker.Advance(bare.ID, record.StatusNeedsValidation, map[string]any{}, "")
		require.True(t, e.BeginEdit(bare.ID, "supplier"))
		buf, _ := e.Buffer()
		assert.Equal(t, "", buf)
		e.CancelEdit()
	})
}

func TestEditor_CommitEdit(t *testing.T) {
	newFixture := func(t *testing.T) (*record.Tracker, *record.Record, *Editor) {
		tracker := record.NewTracker(testLogger())
		rec := seedRecord(t, tracker)
		return tracker, rec, New(tracker, schema.Default(), nil, testLogger())
	}

	t.Run("text commit stores the raw string", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "supplier"))
		e.SetBuffer("Globex Corp")
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, "Globex Corp", got.ExtractedValues["supplier"])
		_, _, editing := e.Editing()
		assert.False(t, editing)
	})

	t.Run("date commit stores the raw string unvalidated", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "date"))
		e.SetBuffer("next tuesday")
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, "next tuesday", got.ExtractedValues["date"])
	})

	t.Run("number commit parses the buffer", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "totalPrice"))
		e.SetBuffer("99.9")
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, 99.9, got.ExtractedValues["totalPrice"])
	})

	t.Run("unparseable number reverts silently", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "totalPrice"))
		e.SetBuffer("abc")
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, 42.5, got.ExtractedValues["totalPrice"], "pre-edit value must survive")
		_, _, editing := e.Editing()
		assert.False(t, editing, "edit mode still ends")
	})

	t.Run("product list commit replaces the list", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "products"))
		e.SetBuffer(`[{"name":"Gadget","quantity":3,"price":5.25}]`)
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		products, ok := got.ExtractedValues["products"].([]record.Product)
		require.True(t, ok)
		require.Len(t, products, 1)
		assert.Equal(t, "Gadget", products[0].Name())
		assert.Equal(t, 3.0, products[0].Quantity())
	})

	t.Run("malformed product JSON reverts silently", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "products"))
		e.SetBuffer(`{"name":"not a list"}`)
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		products, ok := got.ExtractedValues["products"].([]record.Product)
		require.True(t, ok)
		require.Len(t, products, 1)
		assert.Equal(t, "Widget", products[0].Name())
	})

	t.Run("commit keeps terminal status", func(t *testing.T) {
		tracker, rec, e := newFixture(t)
		require.True(t, e.BeginEdit(rec.ID, "supplier"))
		e.SetBuffer("Edited")
		e.CommitEdit()

		got, _ := tracker.Get(rec.ID)
		assert.Equal(t, record.StatusProcessed, got.Status)
	})

	t.Run("commit without an open edit is a no-op", func(t *testing.T) {
		_, _, e := newFixture(t)
		assert.NotPanics(t, e.CommitEdit)
	})
}

func TestEditor_ImplicitCommitOnNewEdit(t *testing.T) {
	tracker := record.NewTracker(testLogger())
	rec := seedRecord(t, tracker)
	e := New(tracker, schema.Default(), nil, testLogger())

	require.True(t, e.BeginEdit(rec.ID, "supplier"))
	e.SetBuffer("Initech")

	// Clicking into another cell commits the first edit.
	require.True(t, e.BeginEdit(rec.ID, "date"))

	got, _ := tracker.Get(rec.ID)
	assert.Equal(t, "Initech", got.ExtractedValues["supplier"])

	_, key, editing := e.Editing()
	require.True(t, editing)
	assert.Equal(t, "date", key)
}

func TestEditor_ReopenSeedsCommittedValue(t *testing.T) {
	tracker := record.NewTracker(testLogger())
	rec := seedRecord(t, tracker)
	e := New(tracker, schema.Default(), nil, testLogger())

	require.True(t, e.BeginEdit(rec.ID, "totalPrice"))
	e.SetBuffer("99")

	// Reopening the same cell commits the pending edit first, so the
	// fresh buffer must show the value that just landed.
	require.True(t, e.BeginEdit(rec.ID, "totalPrice"))

	buf, ok := e.Buffer()
	require.True(t, ok)
	assert.Equal(t, "99", buf)

	got, _ := tracker.Get(rec.ID)
	assert.Equal(t, 99.0, got.ExtractedValues["totalPrice"])
}

func TestEditor_CancelEdit(t *testing.T) {
	tracker := record.NewTracker(testLogger())
	rec := seedRecord(t, tracker)
	e := New(tracker, schema.Default(), nil, testLogger())

	require.True(t, e.BeginEdit(rec.ID, "supplier"))
	e.SetBuffer("Discard me")
	e.CancelEdit()

	got, _ := tracker.Get(rec.ID)
	assert.Equal(t, "Acme Ltd", got.ExtractedValues["supplier"])
	_, _, editing := e.Editing()
	assert.False(t, editing)
}

func TestEditor_Columns(t *testing.T) {
	tracker := record.NewTracker(testLogger())

	t.Run("without delete collaborator", func(t *testing.T) {
		e := New(tracker, schema.Default(), nil, testLogger())
		for _, f := range e.Columns() {
			assert.NotEqual(t, schema.FieldActions, f.Type)
		}
	})

	t.Run("with delete collaborator", func(t *testing.T) {
		var deleted uuid.UUID
		e := New(tracker, schema.Default(), func(id uuid.UUID) { deleted = id }, testLogger())
		cols := e.Columns()
		require.NotEmpty(t, cols)
		assert.Equal(t, schema.FieldActions, cols[len(cols)-1].Type)

		id := uuid.New()
		e.Delete(id)
		assert.Equal(t, id, deleted)
	})
}
