package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"photoselect/internal/config"
)

// LocalStore writes photos to a directory on disk. Filenames are
// validated so a crafted name can never escape the root.
type LocalStore struct {
	root      string
	publicURL string
}

func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	root, err := filepath.Abs(cfg.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{
		root:      root,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
	}, nil
}

func (s *LocalStore) path(filename string) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filename)
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", ErrInvalidFilename
	}
	return full, nil
}

func (s *LocalStore) Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error {
	full, err := s.path(filename)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

func (s *LocalStore) Remove(ctx context.Context, filename string) error {
	full, err := s.path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *LocalStore) URL(filename string) string {
	if s.publicURL == "" {
		return "/uploads/" + filename
	}
	return s.publicURL + "/" + filename
}
