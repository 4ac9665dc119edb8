package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"photoselect/internal/config"
)

func newTestLocalStore(t *testing.T) (*LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(config.StorageConfig{LocalDir: dir})
	require.NoError(t, err)
	return store, dir
}

func TestLocalStorePutAndRemove(t *testing.T) {
	store, dir := newTestLocalStore(t)
	ctx := context.Background()

	content := "jpeg bytes"
	err := store.Put(ctx, "photo.jpg", strings.NewReader(content), int64(len(content)), "image/jpeg")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	require.NoError(t, err)
	require.Equal(t, content, string(data))

	require.NoError(t, store.Remove(ctx, "photo.jpg"))
	_, err = os.Stat(filepath.Join(dir, "photo.jpg"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalStorePutRefusesOverwrite(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "photo.jpg", strings.NewReader("first"), 5, "image/jpeg"))
	require.Error(t, store.Put(ctx, "photo.jpg", strings.NewReader("second"), 6, "image/jpeg"))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, _ := newTestLocalStore(t)
	ctx := context.Background()

	for _, name := range []string{"../escape.jpg", "a/../../escape.jpg", ".hidden"} {
		err := store.Put(ctx, name, strings.NewReader("x"), 1, "image/jpeg")
		require.ErrorIs(t, err, ErrInvalidFilename, name)
	}
}

func TestLocalStoreRemoveMissingFileIsNoop(t *testing.T) {
	store, _ := newTestLocalStore(t)
	require.NoError(t, store.Remove(context.Background(), "never-existed.jpg"))
}

func TestLocalStoreURL(t *testing.T) {
	dir := t.TempDir()

	store, err := NewLocalStore(config.StorageConfig{LocalDir: dir})
	require.NoError(t, err)
	require.Equal(t, "/uploads/photo.jpg", store.URL("photo.jpg"))

	store, err = NewLocalStore(config.StorageConfig{LocalDir: dir, PublicURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/photo.jpg", store.URL("photo.jpg"))
}
