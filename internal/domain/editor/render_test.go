package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
	"github.com/FACorreiaa/invoice-lens/internal/domain/schema"
)

func TestRenderCell(t *testing.T) {
	sch := schema.Default()
	fieldFor := func(key string) schema.Field {
		f, ok := sch.FieldByKey(key)
		require.True(t, ok)
		return f
	}

	rec := &record.Record{
		FileName: "invoice-001.pdf",
		Status:   record.StatusProcessed,
		ExtractedValues: map[string]any{
			"supplier":   "Acme Ltd",
			"totalPrice": 42.5,
			"products": []record.Product{
				{"name": "Widget", "quantity": 2.0, "price": 10.0},
				{"name": "Gadget", "quantity": 1.5, "price": 3.0},
			},
		},
	}

	t.Run("text", func(t *testing.T) {
		assert.Equal(t, "Acme Ltd", RenderCell(rec, fieldFor("supplier")))
	})

	t.Run("number formats with two decimals", func(t *testing.T) {
		assert.Equal(t, "42.50", RenderCell(rec, fieldFor("totalPrice")))
	})

	t.Run("product list joins human-readable lines", func(t *testing.T) {
		assert.Equal(t, "Widget (2 × 10.00), Gadget (1.5 × 3.00)", RenderCell(rec, fieldFor("products")))
	})

	t.Run("status", func(t *testing.T) {
		assert.Equal(t, "processed", RenderCell(rec, fieldFor("status")))
	})

	t.Run("error status appends the message", func(t *testing.T) {
		failed := &record.Record{Status: record.StatusError, ErrorMessage: "model timeout"}
		assert.Equal(t, "error: model timeout", RenderCell(failed, fieldFor("status")))
	})

	t.Run("missing values render the placeholder", func(t *testing.T) {
		bare := &record.Record{FileName: "x.pdf", Status: record.StatusNeedsValidation, ExtractedValues: map[string]any{}}
		assert.Equal(t, "N/A", RenderCell(bare, fieldFor("supplier")))
		assert.Equal(t, "N/A", RenderCell(bare, fieldFor("totalPrice")))
		assert.Equal(t, "N/A", RenderCell(bare, fieldFor("products")))
	})

	t.Run("empty string renders the placeholder", func(t *testing.T) {
		blank := &record.Record{Status: record.StatusProcessed, ExtractedValues: map[string]any{"supplier": ""}}
		assert.Equal(t, "N/A", RenderCell(blank, fieldFor("supplier")))
	})
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", FormatQuantity(2))
	assert.Equal(t, "1.5", FormatQuantity(1.5))
	assert.Equal(t, "0", FormatQuantity(0))
}
