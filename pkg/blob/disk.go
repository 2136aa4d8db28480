package blob

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"context"

	"github.com/google/uuid"
)

// DiskStore writes admitted blobs under a fixed directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the destination directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Save validates the file and writes it to disk under a random unique name
// that keeps the original extension. Concurrent saves never collide because
// each file gets a fresh UUID. The write is capped at MaxFileSize even if
// the declared size was smaller.
func (s *DiskStore) Save(ctx context.Context, meta Metadata, content io.Reader) (string, error) {
	if err := Validate(meta); err != nil {
		return "", err
	}

	name := uuid.New().String() + filepath.Ext(meta.FileName)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(content, MaxFileSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if n > MaxFileSize {
		os.Remove(path)
		return "", ErrFileTooLarge
	}

	return path, nil
}
