package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusUploading.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusProcessed.Terminal())
	assert.True(t, StatusNeedsValidation.Terminal())
	assert.True(t, StatusError.Terminal())
}

func TestProductAccessors(t *testing.T) {
	p := Product{"name": "Widget", "quantity": 2, "price": 10.0}
	assert.Equal(t, "Widget", p.Name())
	assert.Equal(t, 2.0, p.Quantity())
	assert.Equal(t, 10.0, p.Price())

	empty := Product{}
	assert.Equal(t, "", empty.Name())
	assert.Equal(t, 0.0, empty.Quantity())
}

func TestNormalizeValues(t *testing.T) {
	t.Run("coerces ints and keeps the value union", func(t *testing.T) {
		out := NormalizeValues(map[string]any{
			"supplier":   "Acme Ltd",
			"totalPrice": 42,
			"vat":        int64(7),
		})
		assert.Equal(t, "Acme Ltd", out["supplier"])
		assert.Equal(t, 42.0, out["totalPrice"])
		assert.Equal(t, 7.0, out["vat"])
	})

	t.Run("lifts decoded JSON arrays into products", func(t *testing.T) {
		out := NormalizeValues(map[string]any{
			"products": []any{
				map[string]any{"name": "Widget", "quantity": 2.0, "price": 10.0},
				"not a product",
			},
		})
		products, ok := out["products"].([]Product)
		assert.True(t, ok)
		assert.Len(t, products, 1)
		assert.Equal(t, "Widget", products[0].Name())
	})

	t.Run("drops unsupported shapes", func(t *testing.T) {
		out := NormalizeValues(map[string]any{
			"supplier": "Acme Ltd",
			"weird":    struct{ X int }{1},
			"nested":   map[string]any{"a": 1},
		})
		assert.Contains(t, out, "supplier")
		assert.NotContains(t, out, "weird")
		assert.NotContains(t, out, "nested")
	})
}
