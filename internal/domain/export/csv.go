// Package export flattens the current record snapshot against a schema into
// downloadable formats.
package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
	"github.com/FACorreiaa/invoice-lens/pkg/money"
)

// ToDelimitedText serializes records into CSV text. Only records in a
// successful terminal state (processed or needs_validation) are included.
// Every cell is quoted with internal quotes doubled, and each row is
// newline-terminated. Absent values become empty cells here, not the table's
// "N/A" placeholder; the two display rules are intentionally distinct.
func ToDelimitedText(records []*record.Record, sch schema.Schema) string {
	fields := sch.WithoutActions()

	var sb strings.Builder
	cells := make([]string, len(fields))
	for i, f := range fields {
		cells[i] = quoteCell(f.Label)
	}
	sb.WriteString(strings.Join(cells, ","))
	sb.WriteString("\n")

	for _, rec := range records {
		if rec.Status != record.StatusProcessed && rec.Status != record.StatusNeedsValidation {
			continue
		}
		for i, f := range fields {
			cells[i] = quoteCell(cellValue(rec, f))
		}
		sb.WriteString(strings.Join(cells, ","))
		sb.WriteString("\n")
	}
	return sb.String()
}

// cellValue is the export string form of one cell.
func cellValue(rec *record.Record, field schema.Field) string {
	switch field.Type {
	case schema.FieldStatus:
		return string(rec.Status)
	}
	if field.Key == "fileName" {
		return rec.FileName
	}

	value, ok := rec.ExtractedValues[field.Key]
	if !ok || value == nil {
		return ""
	}

	switch field.Type {
	case schema.FieldProductList:
		return productCell(value)
	case schema.FieldNumber:
		if f, ok := value.(float64); ok {
			return money.FormatNumber(f)
		}
		return ""
	default:
		if s, ok := value.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", value)
	}
}

// productCell renders a product list as "name (quantityxprice); ...".
func productCell(value any) string {
	products, ok := value.([]record.Product)
	if !ok {
		return ""
	}
	parts := make([]string, len(products))
	for i, p := range products {
		parts[i] = fmt.Sprintf("%s (%sx%s)",
			p.Name(),
			decimal.NewFromFloat(p.Quantity()).String(),
			money.FormatNumber(p.Price()),
		)
	}
	return strings.Join(parts, "; ")
}

// quoteCell wraps a value in double quotes, doubling embedded quotes.
func quoteCell(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
