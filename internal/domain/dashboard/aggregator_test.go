package dashboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

func fixtureRecords() []*record.Record {
	return []*record.Record{
		{
			ID:       uuid.New(),
			FileName: "acme-january.pdf",
			Status:   record.StatusProcessed,
			ExtractedValues: map[string]any{
				"supplier":   "Acme Ltd",
				"totalPrice": 42.5,
			},
		},
		{
			ID:       uuid.New(),
			FileName: "globex-q1.pdf",
			Status:   record.StatusNeedsValidation,
			ExtractedValues: map[string]any{
				"supplier": "Globex Corp",
				"products": []record.Product{
					{"name": "Widget", "quantity": 2.0, "price": 10.0},
				},
			},
		},
		{
			ID:              uuid.New(),
			FileName:        "broken-scan.pdf",
			Status:          record.StatusError,
			ExtractedValues: map[string]any{},
			ErrorMessage:    "unreadable document",
		},
		{
			ID:              uuid.New(),
			FileName:        "inflight.pdf",
			Status:          record.StatusProcessing,
			ExtractedValues: map[string]any{},
		},
	}
}

func TestFilter(t *testing.T) {
	records := fixtureRecords()

	t.Run("empty term and all status is identity", func(t *testing.T) {
		out := Filter(records, "", StatusAll)
		require.Len(t, out, len(records))
		for i := range records {
			assert.Equal(t, records[i].ID, out[i].ID, "order must be preserved")
		}
	})

	t.Run("empty status filter behaves like all", func(t *testing.T) {
		assert.Len(t, Filter(records, "", ""), len(records))
	})

	t.Run("term matches the file name case-insensitively", func(t *testing.T) {
		out := Filter(records, "ACME", StatusAll)
		require.Len(t, out, 1)
		assert.Equal(t, "acme-january.pdf", out[0].FileName)
	})

	t.Run("term matches extracted values", func(t *testing.T) {
		out := Filter(records, "globex corp", StatusAll)
		require.Len(t, out, 1)
		assert.Equal(t, "globex-q1.pdf", out[0].FileName)
	})

	t.Run("term matches product fields", func(t *testing.T) {
		out := Filter(records, "widget", StatusAll)
		require.Len(t, out, 1)
		assert.Equal(t, "globex-q1.pdf", out[0].FileName)
	})

	t.Run("term matches formatted numbers", func(t *testing.T) {
		out := Filter(records, "42.5", StatusAll)
		require.Len(t, out, 1)
		assert.Equal(t, "acme-january.pdf", out[0].FileName)
	})

	t.Run("status filter", func(t *testing.T) {
		out := Filter(records, "", string(record.StatusError))
		require.Len(t, out, 1)
		assert.Equal(t, "broken-scan.pdf", out[0].FileName)
	})

	t.Run("status and term combine with and", func(t *testing.T) {
		out := Filter(records, "acme", string(record.StatusError))
		assert.Empty(t, out)
	})

	t.Run("no match yields empty non-nil slice", func(t *testing.T) {
		out := Filter(records, "zzz-nothing", StatusAll)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})
}

func TestFuzzyFilter(t *testing.T) {
	records := fixtureRecords()

	out := FuzzyFilter(records, "gbx", StatusAll)
	require.Len(t, out, 1)
	assert.Equal(t, "globex-q1.pdf", out[0].FileName)

	assert.Len(t, FuzzyFilter(records, "", StatusAll), len(records))
}

func TestSummaryCounts(t *testing.T) {
	s := SummaryCounts(fixtureRecords())
	assert.Equal(t, 1, s.Processed)
	assert.Equal(t, 1, s.NeedsValidation)
	assert.Equal(t, 1, s.Error)
}
