package seenset

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*FileStore)(nil)

func TestFileStore_MissingFile(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "announced_tracks.txt"))

	ok, err := store.Contains(ctx, "https://open.spotify.com/track/1")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestFileStore_AddAndContains(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "announced_tracks.txt")
	store := NewFileStore(path)

	require.NoError(t, store.Add(ctx, "id1"))
	require.NoError(t, store.Add(ctx, "id2"))

	ok, err := store.Contains(ctx, "id1")
	require.NoError(t, err)
	assert.True(t, ok)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id1\nid2\n", string(content))
}

func TestFileStore_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.txt")
	store := NewFileStore(path)

	require.NoError(t, store.Add(ctx, "id1"))
	require.NoError(t, store.Add(ctx, "id1"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id1\n", string(content))

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFileStore_Reload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seen.txt")
	require.NoError(t, os.WriteFile(path, []byte("id1\n\n  id2  \nid1\n"), 0644))

	store := NewFileStore(path)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id2"}, ids)

	require.NoError(t, store.Add(ctx, "id3"))

	reopened := NewFileStore(path)
	ok, err := reopened.Contains(ctx, "id3")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_RejectsBadIDs(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "seen.txt"))

	assert.Error(t, store.Add(context.Background(), "  "))
	assert.Error(t, store.Add(context.Background(), "a\nb"))
}

func TestFileStore_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "seen.txt"))
	require.NoError(t, store.Add(ctx, "id1"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Contains(ctx, "id1")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()
}
