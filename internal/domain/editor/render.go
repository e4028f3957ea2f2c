package editor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
	"github.com/FACorreiaa/invoice-lens/pkg/money"
)

// missingPlaceholder is the editor's display rule for absent values. The CSV
// exporter deliberately renders absent values as an empty string instead;
// keep the two paths separate.
const missingPlaceholder = "N/A"

// RenderCell produces the non-edit display string for one cell.
func RenderCell(rec *record.Record, field schema.Field) string {
	switch field.Type {
	case schema.FieldStatus:
		if rec.Status == record.StatusError && rec.ErrorMessage != "" {
			return fmt.Sprintf("%s: %s", rec.Status, rec.ErrorMessage)
		}
		return string(rec.Status)
	case schema.FieldActions:
		return ""
	}

	value, ok := valueFor(rec, field.Key)
	if !ok || value == nil {
		return missingPlaceholder
	}

	switch field.Type {
	case schema.FieldProductList:
		products, ok := value.([]record.Product)
		if !ok || len(products) == 0 {
			return missingPlaceholder
		}
		parts := make([]string, len(products))
		for i, p := range products {
			parts[i] = fmt.Sprintf("%s (%s × %s)", p.Name(), FormatQuantity(p.Quantity()), FormatAmount(p.Price()))
		}
		return strings.Join(parts, ", ")
	case schema.FieldNumber:
		f, ok := value.(float64)
		if !ok {
			return missingPlaceholder
		}
		return FormatAmount(f)
	default:
		if s, ok := value.(string); ok {
			if s == "" {
				return missingPlaceholder
			}
			return s
		}
		return fmt.Sprintf("%v", value)
	}
}

// FormatAmount renders a number cell with exactly two decimal places.
func FormatAmount(v float64) string {
	return money.FormatNumber(v)
}

// FormatQuantity renders a quantity without trailing zeros ("2", "1.5").
func FormatQuantity(v float64) string {
	return decimal.NewFromFloat(v).String()
}
