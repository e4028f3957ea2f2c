// Package editor implements single-cell inline editing over tracked records.
// At most one cell, addressed by (record id, field key), is in edit mode at a
// time. Every parse failure on commit silently reverts to the pre-edit value;
// a bad edit can never corrupt displayed state.
package editor

import (
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
	"github.com/FACorreiaa/invoice-lens/pkg/money"
)

// DeleteFunc is the optional deletion collaborator. Supplying one makes the
// editor append a synthesized actions column.
type DeleteFunc func(id uuid.UUID)

type editSession struct {
	recordID uuid.UUID
	fieldKey string
	buffer   string
}

// Editor holds the edit-mode state for one user session.
type Editor struct {
	tracker  *record.Tracker
	schema   schema.Schema
	onDelete DeleteFunc
	session  *editSession
	logger   *slog.Logger
}

// New creates an editor over the given tracker and schema. onDelete may be
// nil, in which case no actions column is synthesized.
func New(tracker *record.Tracker, sch schema.Schema, onDelete DeleteFunc, logger *slog.Logger) *Editor {
	return &Editor{
		tracker:  tracker,
		schema:   sch,
		onDelete: onDelete,
		logger:   logger,
	}
}

// Columns returns the rendered column set: the schema plus, when a deletion
// collaborator is supplied, a trailing synthesized actions column.
func (e *Editor) Columns() schema.Schema {
	cols := e.schema.WithoutActions()
	if e.onDelete != nil {
		cols = append(cols, schema.Field{Key: "actions", Label: "Actions", Type: schema.FieldActions})
	}
	return cols
}

// BeginEdit opens an edit buffer for (recordID, fieldKey), seeded from the
// current value. Starting a new edit while another is open commits the prior
// one first (loss-of-focus semantics). Non-editable fields and unknown
// records are no-ops.
func (e *Editor) BeginEdit(recordID uuid.UUID, fieldKey string) bool {
	field, ok := e.schema.FieldByKey(fieldKey)
	if !ok || !field.Editable {
		return false
	}
	// Commit the prior edit before reading the record so the new buffer
	// seeds from the committed value, not the pre-commit snapshot.
	if e.session != nil {
		e.CommitEdit()
	}
	rec, ok := e.tracker.Get(recordID)
	if !ok {
		return false
	}
	e.session = &editSession{
		recordID: recordID,
		fieldKey: fieldKey,
		buffer:   seedBuffer(rec, field),
	}
	return true
}

// SetBuffer replaces the open edit buffer text. No-op without an open edit.
func (e *Editor) SetBuffer(text string) {
	if e.session != nil {
		e.session.buffer = text
	}
}

// Buffer returns the open edit buffer, if any.
func (e *Editor) Buffer() (string, bool) {
	if e.session == nil {
		return "", false
	}
	return e.session.buffer, true
}

// Editing returns the open cell address, if any.
func (e *Editor) Editing() (uuid.UUID, string, bool) {
	if e.session == nil {
		return uuid.Nil, "", false
	}
	return e.session.recordID, e.session.fieldKey, true
}

// CommitEdit parses the buffer according to the field type and merges the
// result into the record as a single-key patch. Parse failures revert
// silently: the record keeps its pre-edit value and no error surfaces.
func (e *Editor) CommitEdit() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil

	field, ok := e.schema.FieldByKey(s.fieldKey)
	if !ok {
		return
	}

	var value any
	switch field.Type {
	case schema.FieldNumber:
		parsed, err := money.ParseNumber(s.buffer)
		if err != nil {
			e.logger.Debug("number parse failed, reverting cell",
				slog.String("field", s.fieldKey), slog.String("input", s.buffer))
			return
		}
		value = parsed
	case schema.FieldProductList:
		products, err := parseProducts(s.buffer)
		if err != nil {
			e.logger.Debug("product list parse failed, reverting cell",
				slog.String("field", s.fieldKey))
			return
		}
		value = products
	default:
		// text and date store the raw string; date formats are not validated.
		value = s.buffer
	}

	e.tracker.Update(s.recordID, map[string]any{s.fieldKey: value})
}

// CancelEdit discards the buffer without mutating anything.
func (e *Editor) CancelEdit() {
	e.session = nil
}

// Delete invokes the deletion collaborator for a record, when supplied.
func (e *Editor) Delete(id uuid.UUID) {
	if e.onDelete != nil {
		e.onDelete(id)
	}
}

// seedBuffer produces the initial edit text for a cell: a JSON serialization
// for product lists, the plain string form otherwise, empty when absent.
func seedBuffer(rec *record.Record, field schema.Field) string {
	value, ok := valueFor(rec, field.Key)
	if !ok || value == nil {
		return ""
	}
	switch field.Type {
	case schema.FieldProductList:
		products, ok := value.([]record.Product)
		if !ok {
			return ""
		}
		data, err := json.Marshal(products)
		if err != nil {
			return ""
		}
		return string(data)
	case schema.FieldNumber:
		if f, ok := value.(float64); ok {
			return decimal.NewFromFloat(f).String()
		}
	}
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

// parseProducts decodes the edit buffer as a JSON list of products. Anything
// that is not a list is an error so the commit reverts.
func parseProducts(buffer string) ([]record.Product, error) {
	var raw []map[string]any
	if err := json.Unmarshal([]byte(buffer), &raw); err != nil {
		return nil, err
	}
	products := make([]record.Product, len(raw))
	for i, m := range raw {
		products[i] = record.Product(m)
	}
	return products, nil
}

// valueFor resolves a field key against a record. fileName and status live on
// the record itself; everything else comes from the extracted values.
func valueFor(rec *record.Record, key string) (any, bool) {
	switch key {
	case "fileName":
		return rec.FileName, true
	case "status":
		return string(rec.Status), true
	}
	v, ok := rec.ExtractedValues[key]
	return v, ok
}
