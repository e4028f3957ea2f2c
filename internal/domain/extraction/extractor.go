// Package extraction integrates the external invoice extraction collaborator
// and applies its results to tracked records.
package extraction

import (
	"context"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// Payload is the fixed response contract of the extraction collaborator.
// Every field is optional; missing fields push the record into
// needs_validation instead of processed.
type Payload struct {
	Date             string        `json:"date,omitempty"`
	Supplier         string        `json:"supplier,omitempty"`
	Products         []ProductLine `json:"products,omitempty"`
	TotalPrice       float64       `json:"totalPrice,omitempty"`
	Currency         string        `json:"currency,omitempty"`
	DocumentLanguage string        `json:"documentLanguage,omitempty"`
}

// ProductLine is one extracted line item.
type ProductLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// Complete reports whether the payload carries everything the dashboard
// treats as a clean extraction. Incomplete payloads still populate the record
// but land in needs_validation for manual review.
func (p *Payload) Complete() bool {
	return p.Supplier != "" && p.Date != "" && p.TotalPrice != 0 && len(p.Products) > 0
}

// Values flattens the payload into schema-keyed extracted values.
func (p *Payload) Values() map[string]any {
	values := make(map[string]any)
	if p.Date != "" {
		values["date"] = p.Date
	}
	if p.Supplier != "" {
		values["supplier"] = p.Supplier
	}
	if p.TotalPrice != 0 {
		values["totalPrice"] = p.TotalPrice
	}
	if p.Currency != "" {
		values["currency"] = p.Currency
	}
	if p.DocumentLanguage != "" {
		values["documentLanguage"] = p.DocumentLanguage
	}
	if len(p.Products) > 0 {
		products := make([]record.Product, len(p.Products))
		for i, line := range p.Products {
			products[i] = record.Product{
				"name":     line.Name,
				"quantity": line.Quantity,
				"price":    line.Price,
			}
		}
		values["products"] = products
	}
	return values
}

// Document is one uploaded file handed to the extractor.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Extractor is the external upload+extraction collaborator.
type Extractor interface {
	Extract(ctx context.Context, doc Document) (*Payload, error)
}
