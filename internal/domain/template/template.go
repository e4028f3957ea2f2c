// Package template manages named, user-editable column-set definitions for
// upload guidance and export formatting.
package template

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
)

// Template is a named column-set configuration. Columns are ordered product
// sub-field names. ForUpload partitions upload-guidance templates from export
// templates; names are unique case-insensitively within a partition.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Columns   []string  `json:"columns"`
	IsDefault bool      `json:"isDefault"`
	ForUpload bool      `json:"forUpload"`
}

// ProductSchema derives the editable product sub-column schema from the
// template's ordered column names.
func (t Template) ProductSchema() schema.Schema {
	return schema.ProductColumns(t.Columns)
}

// ValidationError reports a rejected template operation. It is returned, not
// panicked, and carries a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid template %s: %s", e.Field, e.Message)
}

// ProtectedEntityError reports an attempt to delete or destructively mutate a
// locked default template.
type ProtectedEntityError struct {
	Name string
}

func (e *ProtectedEntityError) Error() string {
	return fmt.Sprintf("template %q is a protected default", e.Name)
}

// ErrNothingChanged signals an update whose computed values are identical to
// the original; the store is left untouched.
var ErrNothingChanged = errors.New("nothing changed")

// ErrNotFound is returned when the target template id is unknown.
var ErrNotFound = errors.New("template not found")

// ParseColumns splits a raw comma-separated column string into an ordered,
// trimmed set. Embedded quote characters are stripped and empty tokens are
// discarded. The result must be non-empty.
func ParseColumns(raw string) ([]string, error) {
	tokens := strings.Split(raw, ",")
	columns := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		tok = strings.ReplaceAll(tok, `"`, "")
		tok = strings.ReplaceAll(tok, `'`, "")
		if tok == "" {
			continue
		}
		columns = append(columns, tok)
	}
	if len(columns) == 0 {
		return nil, &ValidationError{Field: "columns", Message: "no usable column names"}
	}
	return columns, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
