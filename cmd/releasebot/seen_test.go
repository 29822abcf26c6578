package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/releasebot/internal/db"
	"github.com/abdulachik/releasebot/internal/seenset"
)

func TestImportIDs_FileStore(t *testing.T) {
	ctx := context.Background()
	store := seenset.NewFileStore(filepath.Join(t.TempDir(), "announced_tracks.txt"))
	require.NoError(t, store.Add(ctx, "id1"))

	added, err := importIDs(ctx, store, []string{"id1", "id2", "id3"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id2", "id3"}, ids)
}

func TestImportIDs_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := db.NewStore(ctx, filepath.Join(t.TempDir(), "releasebot.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	added, err := importIDs(ctx, store, []string{"id1", "id2", "id1"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
}
