package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()

	t.Run("save and open roundtrip", func(t *testing.T) {
		info, err := store.Save(ctx, id, "invoice-001.pdf", "application/pdf", strings.NewReader("%PDF-1.4 fake"))
		require.NoError(t, err)
		assert.Equal(t, id, info.ID)
		assert.Equal(t, "invoice-001.pdf", info.Name)
		assert.Equal(t, int64(len("%PDF-1.4 fake")), info.Size)

		rc, got, err := store.Open(ctx, id)
		require.NoError(t, err)
		defer rc.Close()

		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(data))
		assert.Equal(t, "application/pdf", got.ContentType)
	})

	t.Run("open unknown record", func(t *testing.T) {
		_, _, err := store.Open(ctx, uuid.New())
		assert.Error(t, err)
	})

	t.Run("delete removes the document", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, id))
		_, _, err := store.Open(ctx, id)
		assert.Error(t, err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, uuid.New()))
	})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "invoice-001.pdf", sanitizeFilename("invoice-001.pdf"))
	assert.Equal(t, "passwd", sanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "sneaky_name.pdf", sanitizeFilename("sneaky%name.pdf"))
	assert.Equal(t, "upload.bin", sanitizeFilename(""))
}
