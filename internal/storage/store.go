package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"photoselect/internal/config"
)

var ErrInvalidFilename = errors.New("invalid filename")

// ObjectStore abstracts where photo bytes live. The backend is chosen
// by configuration: an S3-compatible service or a local directory.
type ObjectStore interface {
	Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, filename string) error
	URL(filename string) string
}

func New(cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "s3":
		return NewMinioStore(cfg)
	case "local", "":
		return NewLocalStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ValidateFilename rejects anything that could escape the bucket or
// upload directory: path separators, traversal segments, hidden names.
func ValidateFilename(filename string) error {
	if filename == "" || len(filename) > 255 {
		return ErrInvalidFilename
	}
	if strings.ContainsAny(filename, "/\\") {
		return ErrInvalidFilename
	}
	if strings.Contains(filename, "..") || strings.HasPrefix(filename, ".") {
		return ErrInvalidFilename
	}
	if strings.ContainsRune(filename, 0) {
		return ErrInvalidFilename
	}
	return nil
}
