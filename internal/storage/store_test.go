package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"photoselect/internal/config"
)

func TestValidateFilename(t *testing.T) {
	valid := []string{
		"photo.jpg",
		"2z4e7K9photoselect.png",
		"a",
	}
	for _, name := range valid {
		require.NoError(t, ValidateFilename(name), name)
	}

	invalid := []string{
		"",
		"../etc/passwd",
		"..\\windows\\system32",
		"dir/photo.jpg",
		"dir\\photo.jpg",
		".hidden",
		"photo..jpg",
		"photo\x00.jpg",
		strings.Repeat("a", 256),
	}
	for _, name := range invalid {
		require.ErrorIs(t, ValidateFilename(name), ErrInvalidFilename, "%q should be rejected", name)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(config.StorageConfig{Backend: "ftp"})
	require.Error(t, err)
}

func TestNewDefaultsToLocal(t *testing.T) {
	store, err := New(config.StorageConfig{Backend: "", LocalDir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &LocalStore{}, store)
}
