package seenset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlay_LeavesBaseUntouched(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "announced_tracks.txt")

	base := NewFileStore(path)
	require.NoError(t, base.Add(ctx, "id1"))

	o := NewOverlay(base)
	require.NoError(t, o.Add(ctx, "id1"))
	require.NoError(t, o.Add(ctx, "id2"))
	require.NoError(t, o.Add(ctx, "id2"))

	ok, err := o.Contains(ctx, "id2")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := o.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ids, err := o.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1", "id2"}, ids)
	assert.Equal(t, []string{"id2"}, o.Added())

	fromDisk, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id1"}, fromDisk)
}
