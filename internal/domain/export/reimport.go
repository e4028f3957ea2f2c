package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
	"github.com/FACorreiaa/invoice-lens/pkg/money"
)

// ReimportResult summarizes a corrected-CSV merge.
type ReimportResult struct {
	RowsTotal   int
	RowsApplied int
	RowsSkipped int
}

// ReadCorrections reads back a CSV previously produced by ToDelimitedText
// (possibly edited in a spreadsheet) and merges corrected scalar cells into
// the matching records, keyed by file name. Product-list columns are skipped:
// their flattened cell form is display-only and line items are corrected in
// the table instead. Statuses are never changed by a re-import.
func ReadCorrections(r io.Reader, tracker *record.Tracker, sch schema.Schema) (*ReimportResult, error) {
	rows, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	byLabel := make(map[string]schema.Field)
	fileLabel := ""
	for _, f := range sch.WithoutActions() {
		byLabel[f.Label] = f
		if f.Key == "fileName" {
			fileLabel = f.Label
		}
	}
	if fileLabel == "" {
		return nil, fmt.Errorf("schema has no file name column to key rows by")
	}

	byFileName := make(map[string]*record.Record)
	for _, rec := range tracker.List() {
		byFileName[rec.FileName] = rec
	}

	result := &ReimportResult{RowsTotal: len(rows)}
	for _, row := range rows {
		rec, ok := byFileName[strings.TrimSpace(row[fileLabel])]
		if !ok {
			result.RowsSkipped++
			continue
		}

		patch := make(map[string]any)
		for label, raw := range row {
			field, ok := byLabel[label]
			if !ok || !field.Editable {
				continue
			}
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			switch field.Type {
			case schema.FieldNumber:
				v, err := money.ParseNumber(raw)
				if err != nil {
					continue
				}
				patch[field.Key] = v
			case schema.FieldText, schema.FieldDate:
				patch[field.Key] = raw
			}
		}

		if len(patch) == 0 {
			result.RowsSkipped++
			continue
		}
		tracker.Update(rec.ID, patch)
		result.RowsApplied++
	}
	return result, nil
}
