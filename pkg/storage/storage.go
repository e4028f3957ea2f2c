// Package storage persists uploaded invoice documents so their previews can
// be served back to the dashboard.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored document
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for document storage operations
type Storage interface {
	// Save stores a document under the given record id and returns its metadata
	Save(ctx context.Context, recordID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open retrieves a stored document by record id
	Open(ctx context.Context, recordID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a stored document by record id
	Delete(ctx context.Context, recordID uuid.UUID) error
}
