package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage implements Storage using the local filesystem. Each record's
// document lives in its own directory alongside a small metadata file.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local filesystem storage
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Save stores a document and returns its metadata
func (s *LocalStorage) Save(ctx context.Context, recordID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	dir := filepath.Join(s.basePath, recordID.String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record directory: %w", err)
	}

	safeFilename := sanitizeFilename(filename)
	filePath := filepath.Join(dir, safeFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          recordID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        safeFilename,
		CreatedAt:   time.Now(),
	}

	if err := s.saveMetadata(dir, info); err != nil {
		os.Remove(filePath)
		return nil, err
	}
	return info, nil
}

// Open retrieves a stored document by record id
func (s *LocalStorage) Open(ctx context.Context, recordID uuid.UUID) (io.ReadCloser, *FileInfo, error) {
	dir := filepath.Join(s.basePath, recordID.String())
	info, err := s.loadMetadata(dir)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(dir, info.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, info, nil
}

// Delete removes a stored document and its metadata
func (s *LocalStorage) Delete(ctx context.Context, recordID uuid.UUID) error {
	dir := filepath.Join(s.basePath, recordID.String())
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete stored document: %w", err)
	}
	return nil
}

func (s *LocalStorage) saveMetadata(dir string, info *FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func (s *LocalStorage) loadMetadata(dir string) (*FileInfo, error) {
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return nil, fmt.Errorf("document not found: %w", err)
	}
	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &info, nil
}

// sanitizeFilename strips path separators and control characters so uploaded
// names cannot escape the record directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "upload.bin"
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.', r == '-', r == '_', r == ' ':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "upload.bin"
	}
	return sb.String()
}
