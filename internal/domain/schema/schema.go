// Package schema defines the ordered field model that drives both table
// rendering and export header generation.
package schema

import (
	"fmt"
	"strings"
)

// FieldType identifies how a field is parsed, edited and rendered.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldProductList FieldType = "product-list"
	FieldStatus      FieldType = "status"
	// FieldActions columns are synthesized by the editor when a delete
	// collaborator is supplied. They are never persisted.
	FieldActions FieldType = "actions"
)

// Field is a single displayable/editable column definition.
type Field struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Editable bool      `json:"editable"`
}

// Schema is an ordered sequence of fields. Order defines both column order
// and CSV header order.
type Schema []Field

// Default returns the invoice schema used when no template is active.
func Default() Schema {
	return Schema{
		{Key: "fileName", Label: "File", Type: FieldText, Editable: false},
		{Key: "date", Label: "Date", Type: FieldDate, Editable: true},
		{Key: "supplier", Label: "Supplier", Type: FieldText, Editable: true},
		{Key: "products", Label: "Products", Type: FieldProductList, Editable: true},
		{Key: "totalPrice", Label: "Total", Type: FieldNumber, Editable: true},
		{Key: "currency", Label: "Currency", Type: FieldText, Editable: true},
		{Key: "documentLanguage", Label: "Language", Type: FieldText, Editable: true},
		{Key: "status", Label: "Status", Type: FieldStatus, Editable: false},
	}
}

// FieldByKey returns the field with the given key, or false when absent.
func (s Schema) FieldByKey(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the ordered field keys.
func (s Schema) Keys() []string {
	keys := make([]string, len(s))
	for i, f := range s {
		keys[i] = f.Key
	}
	return keys
}

// WithoutActions returns the schema with any actions columns stripped.
func (s Schema) WithoutActions() Schema {
	out := make(Schema, 0, len(s))
	for _, f := range s {
		if f.Type != FieldActions {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the structural invariants: non-empty keys, unique keys and
// at most one status field.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s))
	statusCount := 0
	for _, f := range s {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return fmt.Errorf("schema field with empty key")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate schema field key %q", key)
		}
		seen[key] = struct{}{}
		if f.Type == FieldStatus {
			statusCount++
		}
	}
	if statusCount > 1 {
		return fmt.Errorf("schema has %d status fields, at most one allowed", statusCount)
	}
	return nil
}

// ValidateValues checks a decoded wire payload against the schema before it
// is merged into a record. Keys must name editable schema fields; number
// fields must be numeric and product-list fields must decode to a list.
func (s Schema) ValidateValues(values map[string]any) error {
	for key, v := range values {
		f, ok := s.FieldByKey(key)
		if !ok {
			return fmt.Errorf("unknown field %q", key)
		}
		if !f.Editable {
			return fmt.Errorf("field %q is not editable", key)
		}
		switch f.Type {
		case FieldNumber:
			switch v.(type) {
			case float64, int, int64:
			default:
				return fmt.Errorf("field %q must be a number", key)
			}
		case FieldProductList:
			switch v.(type) {
			case []any, []map[string]any:
			default:
				return fmt.Errorf("field %q must be a product list", key)
			}
		default:
			if _, ok := v.(string); !ok {
				return fmt.Errorf("field %q must be a string", key)
			}
		}
	}
	return nil
}

// ProductColumns derives editable product sub-columns from ordered template
// column names. The first column keeps its name as label; all columns are
// free text except ones that look numeric.
func ProductColumns(names []string) []Field {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{
			Key:      name,
			Label:    name,
			Type:     guessColumnType(name),
			Editable: true,
		})
	}
	return fields
}

func guessColumnType(name string) FieldType {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "price"), strings.Contains(lower, "amount"),
		strings.Contains(lower, "quantity"), strings.Contains(lower, "qty"),
		strings.Contains(lower, "total"):
		return FieldNumber
	case strings.Contains(lower, "date"):
		return FieldDate
	default:
		return FieldText
	}
}
