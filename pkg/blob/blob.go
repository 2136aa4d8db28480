// Package blob validates and stores uploaded diagnostic files. Admission is
// decided on the declared content type and byte size before any bytes reach
// the backing store; admitted files get collision-resistant names.
package blob

import (
	"context"
	"errors"
	"io"
)

var (
	ErrInvalidContentType = errors.New("content type is not allowed")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
)

// MaxFileSize is the upload size ceiling in bytes (5 MiB).
const MaxFileSize = 5 * 1024 * 1024

// AllowedContentTypes lists the MIME types admitted for diagnostic uploads.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"text/csv":        true,
}

// Metadata describes an incoming file before admission.
type Metadata struct {
	FileName    string
	ContentType string
	Size        int64
}

// Store is the capability interface for blob persistence. Save admits the
// content and returns a URL the caller can record against the owning record.
type Store interface {
	Save(ctx context.Context, meta Metadata, content io.Reader) (string, error)
}

// Validate checks the declared content type and size against the allowlist
// and ceiling. It distinguishes a disallowed type from an oversize file so
// the transport layer can map them to different statuses.
func Validate(meta Metadata) error {
	if !AllowedContentTypes[meta.ContentType] {
		return ErrInvalidContentType
	}
	if meta.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}
