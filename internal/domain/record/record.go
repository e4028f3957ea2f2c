// Package record tracks uploaded documents through the extraction lifecycle.
package record

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an uploaded document.
type Status string

const (
	StatusPending         Status = "pending"
	StatusUploading       Status = "uploading"
	StatusProcessing      Status = "processing"
	StatusProcessed       Status = "processed"
	StatusNeedsValidation Status = "needs_validation"
	StatusError           Status = "error"
)

// Terminal reports whether the automatic pipeline is done with this status.
// User edits on a terminal record never change its status.
func (s Status) Terminal() bool {
	switch s {
	case StatusProcessed, StatusNeedsValidation, StatusError:
		return true
	}
	return false
}

// rank orders statuses along the lifecycle graph. Transitions never move
// backwards; the validation and error branches are terminal.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusUploading:
		return 1
	case StatusProcessing:
		return 2
	case StatusProcessed, StatusNeedsValidation, StatusError:
		return 3
	}
	return -1
}

// Product is one invoice line item. It always carries an inferable
// name/quantity/price triple but may carry arbitrary extra keys defined by
// the active template.
type Product map[string]any

// Name returns the product name, or "" when absent.
func (p Product) Name() string {
	if v, ok := p["name"].(string); ok {
		return v
	}
	return ""
}

// Quantity returns the product quantity as a float, defaulting to zero.
func (p Product) Quantity() float64 {
	return p.numeric("quantity")
}

// Price returns the unit price as a float, defaulting to zero.
func (p Product) Price() float64 {
	return p.numeric("price")
}

func (p Product) numeric(key string) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Record is one tracked uploaded document and its extracted data.
// ExtractedValues is keyed by the active schema's field keys; values are
// restricted to string, float64 or []Product.
type Record struct {
	ID                 uuid.UUID      `json:"id"`
	FileName           string         `json:"fileName"`
	Status             Status         `json:"status"`
	ExtractedValues    map[string]any `json:"extractedValues"`
	SourceURL          string         `json:"sourceUrl,omitempty"`
	ErrorMessage       string         `json:"errorMessage,omitempty"`
	ActiveTemplateName string         `json:"activeTemplateName,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// Clone returns a deep copy so callers can't mutate tracker state through
// returned snapshots.
func (r *Record) Clone() *Record {
	out := *r
	out.ExtractedValues = cloneValues(r.ExtractedValues)
	return &out
}

func cloneValues(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if products, ok := v.([]Product); ok {
			copied := make([]Product, len(products))
			for i, p := range products {
				cp := make(Product, len(p))
				for pk, pv := range p {
					cp[pk] = pv
				}
				copied[i] = cp
			}
			out[k] = copied
			continue
		}
		out[k] = v
	}
	return out
}

// NormalizeValues coerces an arbitrary decoded payload into the closed value
// union used by the editor and exporter: string, float64 or []Product.
// Unsupported shapes are dropped rather than trusted deeper in the stack.
func NormalizeValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch tv := v.(type) {
		case string:
			out[k] = tv
		case float64:
			out[k] = tv
		case int:
			out[k] = float64(tv)
		case int64:
			out[k] = float64(tv)
		case []Product:
			out[k] = tv
		case []any:
			products := make([]Product, 0, len(tv))
			for _, item := range tv {
				if m, ok := item.(map[string]any); ok {
					products = append(products, Product(m))
				}
			}
			out[k] = products
		case []map[string]any:
			products := make([]Product, 0, len(tv))
			for _, m := range tv {
				products = append(products, Product(m))
			}
			out[k] = products
		}
	}
	return out
}
