package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
)

const sheetName = "Invoices"

// WriteWorkbook serializes the exportable records into an Excel workbook.
// The row filter matches ToDelimitedText: only processed and needs_validation
// records are included, and product lists use the same flattened cell form.
func WriteWorkbook(w io.Writer, records []*record.Record, sch schema.Schema) error {
	fields := sch.WithoutActions()

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, field := range fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, field.Label); err != nil {
			return fmt.Errorf("failed to write header %q: %w", field.Label, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header %q: %w", field.Label, err)
		}
	}

	row := 2
	for _, rec := range records {
		if rec.Status != record.StatusProcessed && rec.Status != record.StatusNeedsValidation {
			continue
		}
		for col, field := range fields {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("failed to compute cell: %w", err)
			}
			// Keep numbers numeric in the workbook so spreadsheets can sum them.
			if field.Type == schema.FieldNumber {
				if v, ok := rec.ExtractedValues[field.Key].(float64); ok {
					if err := f.SetCellFloat(sheetName, cell, v, 2, 64); err != nil {
						return fmt.Errorf("failed to write cell: %w", err)
					}
					continue
				}
			}
			if err := f.SetCellValue(sheetName, cell, cellValue(rec, field)); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
