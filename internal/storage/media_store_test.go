package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFileAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	store, err := NewMediaStore(filepath.Join(root, "media"), "http://cdn.test/media/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "abc123", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.test/media/abc123.jpg", url)

	data, err := os.ReadFile(filepath.Join(store.Root(), "abc123.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveRejectsPathTraversal(t *testing.T) {
	store, err := NewMediaStore(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)

	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		_, err := store.Save(context.Background(), id, []byte("x"))
		assert.Error(t, err, id)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, err := NewMediaStore(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "gone", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(context.Background(), "gone"))
	assert.NoError(t, store.Delete(context.Background(), "gone"))
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	store, err := NewMediaStore(t.TempDir(), "http://cdn.test/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Save(ctx, "late", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublicIDOnlyMatchesOwnURLs(t *testing.T) {
	store, err := NewMediaStore(t.TempDir(), "http://cdn.test/media/")
	require.NoError(t, err)

	id, ok := store.PublicID(store.URL("abc123"))
	require.True(t, ok)
	assert.Equal(t, "abc123", id)

	for _, url := range []string{
		"https://elsewhere.test/media/abc123.jpg",
		"http://cdn.test/media/abc123.png",
		"http://cdn.test/media/../secret.jpg",
		"http://cdn.test/media/nested/abc.jpg",
		"http://cdn.test/media/.jpg",
	} {
		_, ok := store.PublicID(url)
		assert.False(t, ok, url)
	}
}
